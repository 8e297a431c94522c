package s3

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantmesh/finvec/blobstore"
)

// fakeDDBClient is an in-memory DynamoDB fake honoring the
// attribute_not_exists condition the commit store relies on.
type fakeDDBClient struct {
	mu sync.Mutex
	// items[baseURI][version]
	items map[string]map[string]map[string]ddbtypes.AttributeValue
}

func newFakeDDBClient() *fakeDDBClient {
	return &fakeDDBClient{items: make(map[string]map[string]map[string]ddbtypes.AttributeValue)}
}

func (c *fakeDDBClient) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	uri := params.Item["base_uri"].(*ddbtypes.AttributeValueMemberS).Value
	version := params.Item["version"].(*ddbtypes.AttributeValueMemberN).Value

	if params.ConditionExpression != nil && *params.ConditionExpression == "attribute_not_exists(version)" {
		if _, exists := c.items[uri][version]; exists {
			return nil, &ddbtypes.ConditionalCheckFailedException{Message: aws.String("version exists")}
		}
	}

	if c.items[uri] == nil {
		c.items[uri] = make(map[string]map[string]ddbtypes.AttributeValue)
	}
	c.items[uri][version] = params.Item

	return &dynamodb.PutItemOutput{}, nil
}

func (c *fakeDDBClient) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	uri := params.ExpressionAttributeValues[":uri"].(*ddbtypes.AttributeValueMemberS).Value

	var versions []string
	for v := range c.items[uri] {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool {
		var a, b uint64
		fmt.Sscanf(versions[i], "%d", &a)
		fmt.Sscanf(versions[j], "%d", &b)
		return a > b
	})

	out := &dynamodb.QueryOutput{}
	for _, v := range versions {
		out.Items = append(out.Items, c.items[uri][v])
		if params.Limit != nil && len(out.Items) >= int(*params.Limit) {
			break
		}
	}

	return out, nil
}

func newTestCommitStore(t *testing.T) (*CommitStore, *fakeDDBClient) {
	t.Helper()

	ddb := newFakeDDBClient()
	store := NewStore(newFakeS3Client(), "test-bucket", "finvec", DefaultUploadConfig())

	return NewCommitStore(store, ddb, "finvec-commits", "s3://test-bucket/finvec"), ddb
}

func TestCommitStore_PutPair(t *testing.T) {
	cs, _ := newTestCommitStore(t)
	ctx := context.Background()

	require.NoError(t, cs.PutPair(ctx,
		blobstore.Object{Name: "index.fvec", Data: []byte("index-v1")},
		blobstore.Object{Name: "index.fvec.meta", Data: []byte("meta-v1")},
	))

	data, err := cs.Get(ctx, "index.fvec")
	require.NoError(t, err)
	assert.Equal(t, []byte("index-v1"), data)

	// A second commit supersedes the first.
	require.NoError(t, cs.PutPair(ctx,
		blobstore.Object{Name: "index.fvec", Data: []byte("index-v2")},
		blobstore.Object{Name: "index.fvec.meta", Data: []byte("meta-v2")},
	))

	data, err = cs.Get(ctx, "index.fvec.meta")
	require.NoError(t, err)
	assert.Equal(t, []byte("meta-v2"), data)
}

func TestCommitStore_GetBeforeAnyCommit(t *testing.T) {
	cs, _ := newTestCommitStore(t)

	_, err := cs.Get(context.Background(), "index.fvec")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestCommitStore_ConcurrentModification(t *testing.T) {
	cs, ddb := newTestCommitStore(t)
	ctx := context.Background()

	// Simulate another writer claiming version 1 between our read of the
	// latest version and our commit.
	_, err := ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String("finvec-commits"),
		Item: map[string]ddbtypes.AttributeValue{
			"base_uri": &ddbtypes.AttributeValueMemberS{Value: "s3://test-bucket/finvec"},
			"version":  &ddbtypes.AttributeValueMemberN{Value: "1"},
		},
	})
	require.NoError(t, err)

	err = cs.commitVersion(ctx, 1)
	assert.ErrorIs(t, err, ErrConcurrentModification)
}

func TestCommitStore_List(t *testing.T) {
	cs, _ := newTestCommitStore(t)
	ctx := context.Background()

	require.NoError(t, cs.PutPair(ctx,
		blobstore.Object{Name: "index.fvec", Data: []byte("i")},
		blobstore.Object{Name: "index.fvec.meta", Data: []byte("m")},
	))

	names, err := cs.List(ctx, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"index.fvec", "index.fvec.meta"}, names)
}
