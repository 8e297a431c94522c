package s3

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/quantmesh/finvec/blobstore"
)

// DDBClient is the subset of the DynamoDB API the commit store uses.
type DDBClient interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// ErrConcurrentModification is returned when another writer committed a
// version while this commit was in flight.
var ErrConcurrentModification = errors.New("concurrent modification detected")

// CommitStore implements blobstore.BlobStore and blobstore.PairWriter
// on S3 with DynamoDB as a commit log. S3 has no multi-key transaction,
// so artifact pairs are written under a versioned prefix and a DynamoDB
// conditional write atomically advances the current-version pointer.
// Readers resolve names through the latest committed version, which
// means they never observe an index without its matching metadata.
//
// Table schema:
//   - Partition key: base_uri (string) - the S3 prefix being committed
//   - Sort key: version (number) - monotonically increasing version
//
// Create table with:
//
//	aws dynamodb create-table \
//	  --table-name finvec-commits \
//	  --attribute-definitions AttributeName=base_uri,AttributeType=S AttributeName=version,AttributeType=N \
//	  --key-schema AttributeName=base_uri,KeyType=HASH AttributeName=version,KeyType=RANGE \
//	  --billing-mode PAY_PER_REQUEST
type CommitStore struct {
	store     *Store
	ddbClient DDBClient
	tableName string
	baseURI   string
}

// NewCommitStore creates an S3+DynamoDB commit store. baseURI should be
// "s3://bucket/prefix", used as the DynamoDB partition key.
func NewCommitStore(store *Store, ddbClient DDBClient, tableName, baseURI string) *CommitStore {
	return &CommitStore{
		store:     store,
		ddbClient: ddbClient,
		tableName: tableName,
		baseURI:   baseURI,
	}
}

func versionedName(version uint64, name string) string {
	return path.Join(fmt.Sprintf("v%d", version), name)
}

// Put writes a single blob under the next version and commits it.
func (s *CommitStore) Put(ctx context.Context, name string, data []byte) error {
	version, err := s.latestVersion(ctx)
	if err != nil {
		return err
	}

	next := version + 1
	if err := s.store.Put(ctx, versionedName(next, name), data); err != nil {
		return err
	}

	return s.commitVersion(ctx, next)
}

// PutPair uploads both objects under the next version, then commits the
// version with a conditional write. A lost race leaves only unreferenced
// objects behind while the committed state stays consistent.
func (s *CommitStore) PutPair(ctx context.Context, a, b blobstore.Object) error {
	version, err := s.latestVersion(ctx)
	if err != nil {
		return err
	}

	next := version + 1
	if err := s.store.Put(ctx, versionedName(next, a.Name), a.Data); err != nil {
		return err
	}
	if err := s.store.Put(ctx, versionedName(next, b.Name), b.Data); err != nil {
		return err
	}

	return s.commitVersion(ctx, next)
}

// Get resolves name through the latest committed version.
func (s *CommitStore) Get(ctx context.Context, name string) ([]byte, error) {
	version, err := s.latestVersion(ctx)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, blobstore.ErrNotFound
	}

	return s.store.Get(ctx, versionedName(version, name))
}

// Delete removes name from the latest committed version.
func (s *CommitStore) Delete(ctx context.Context, name string) error {
	version, err := s.latestVersion(ctx)
	if err != nil {
		return err
	}
	if version == 0 {
		return nil
	}

	return s.store.Delete(ctx, versionedName(version, name))
}

// List lists blobs in the latest committed version.
func (s *CommitStore) List(ctx context.Context, prefix string) ([]string, error) {
	version, err := s.latestVersion(ctx)
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, nil
	}

	names, err := s.store.List(ctx, versionedName(version, prefix))
	if err != nil {
		return nil, err
	}

	trimmed := make([]string, 0, len(names))
	versionPrefix := fmt.Sprintf("v%d/", version)
	for _, name := range names {
		if len(name) > len(versionPrefix) && name[:len(versionPrefix)] == versionPrefix {
			name = name[len(versionPrefix):]
		}
		trimmed = append(trimmed, name)
	}

	return trimmed, nil
}

// latestVersion queries DynamoDB for the most recent committed version.
// A store with no commits yet reports version 0.
func (s *CommitStore) latestVersion(ctx context.Context) (uint64, error) {
	resp, err := s.ddbClient.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("base_uri = :uri"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":uri": &ddbtypes.AttributeValueMemberS{Value: s.baseURI},
		},
		ScanIndexForward: aws.Bool(false),
		Limit:            aws.Int32(1),
	})
	if err != nil {
		return 0, fmt.Errorf("query commit log: %w", err)
	}

	if len(resp.Items) == 0 {
		return 0, nil
	}

	versionAttr, ok := resp.Items[0]["version"].(*ddbtypes.AttributeValueMemberN)
	if !ok {
		return 0, errors.New("invalid version attribute in commit log")
	}

	var version uint64
	if _, err := fmt.Sscanf(versionAttr.Value, "%d", &version); err != nil {
		return 0, fmt.Errorf("parse version: %w", err)
	}

	return version, nil
}

// commitVersion publishes version with a conditional put that fails if
// another writer already claimed it.
func (s *CommitStore) commitVersion(ctx context.Context, version uint64) error {
	_, err := s.ddbClient.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item: map[string]ddbtypes.AttributeValue{
			"base_uri": &ddbtypes.AttributeValueMemberS{Value: s.baseURI},
			"version":  &ddbtypes.AttributeValueMemberN{Value: fmt.Sprintf("%d", version)},
		},
		ConditionExpression: aws.String("attribute_not_exists(version)"),
	})
	if err != nil {
		var condErr *ddbtypes.ConditionalCheckFailedException
		if errors.As(err, &condErr) {
			return ErrConcurrentModification
		}
		return fmt.Errorf("commit version: %w", err)
	}

	return nil
}
