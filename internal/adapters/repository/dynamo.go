package repository

import (
	"context"
	"fmt"
	"reflect"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// BatchWriter is the slice of the DynamoDB client the store needs.
type BatchWriter interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

// DynamoConfig locates the DynamoDB endpoint. Endpoint is set for
// DynamoDB Local; static credentials are used only when AccessKeyID is set.
type DynamoConfig struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// DynamoStore writes each partition to the table of the same name with
// BatchWriteItem put requests.
type DynamoStore struct {
	client BatchWriter
}

// NewDynamoStore builds a client from the default AWS credential chain.
func NewDynamoStore(ctx context.Context, cfg DynamoConfig) (*DynamoStore, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewDynamoStoreWithClient(client), nil
}

// NewDynamoStoreWithClient wraps an existing client.
func NewDynamoStoreWithClient(client BatchWriter) *DynamoStore {
	return &DynamoStore{client: client}
}

// BatchUpsert sends one BatchWriteItem call. Items listed in the response's
// UnprocessedItems are mapped back to the input items and returned.
func (s *DynamoStore) BatchUpsert(ctx context.Context, partition string, items []Item) ([]Item, error) {
	if err := checkBatch(partition, items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	sent := make([]map[string]types.AttributeValue, len(items))
	requests := make([]types.WriteRequest, len(items))
	for i, it := range items {
		av, err := attributevalue.MarshalMap(it.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %v", ErrMarshalItem, partition, it.Key, err)
		}
		sent[i] = av
		requests[i] = types.WriteRequest{PutRequest: &types.PutRequest{Item: av}}
	}

	out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
		RequestItems: map[string][]types.WriteRequest{partition: requests},
	})
	if err != nil {
		return nil, fmt.Errorf("batch write %s: %w", partition, err)
	}
	if out == nil {
		return nil, nil
	}

	reported := out.UnprocessedItems[partition]
	unprocessed := matchUnprocessed(items, sent, reported)
	if len(unprocessed) < len(reported) {
		return nil, fmt.Errorf("%w: %s: %d of %d unprocessed requests match no sent item",
			ErrUnmatchedUnprocessed, partition, len(reported)-len(unprocessed), len(reported))
	}
	return unprocessed, nil
}

// matchUnprocessed returns the input items whose marshaled form appears in
// the unprocessed requests, in request order. Each input matches at most once,
// so a short result means some reported requests were not recognized.
func matchUnprocessed(items []Item, sent []map[string]types.AttributeValue, unprocessed []types.WriteRequest) []Item {
	if len(unprocessed) == 0 {
		return nil
	}

	matched := make([]bool, len(items))
	for _, req := range unprocessed {
		if req.PutRequest == nil {
			continue
		}
		for i := range sent {
			if !matched[i] && reflect.DeepEqual(sent[i], req.PutRequest.Item) {
				matched[i] = true
				break
			}
		}
	}

	var out []Item
	for i, it := range items {
		if matched[i] {
			out = append(out, it)
		}
	}
	return out
}
