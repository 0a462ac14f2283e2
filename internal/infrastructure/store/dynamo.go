package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoStore stores documents in a single DynamoDB table with
// collection as the partition key and id as the sort key.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
}

// dynamoDocument represents the DynamoDB item structure
type dynamoDocument struct {
	Collection string `dynamodbav:"collection"`
	ID         string `dynamodbav:"id"`
	Doc        string `dynamodbav:"doc"`
}

func NewDynamoStore(client *dynamodb.Client, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
	}
}

// Put writes a document unconditionally. Repeated writes with the same
// collection/id overwrite in place, which gives upsert semantics.
func (s *DynamoStore) Put(ctx context.Context, collection, id string, doc any) error {
	jsonDoc, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	item := dynamoDocument{
		Collection: collection,
		ID:         id,
		Doc:        string(jsonDoc),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put document: %w", err)
	}

	return nil
}

func (s *DynamoStore) Get(ctx context.Context, collection, id string) (json.RawMessage, bool, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"collection": &types.AttributeValueMemberS{Value: collection},
			"id":         &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("failed to get document: %w", err)
	}

	if result.Item == nil {
		return nil, false, nil
	}

	var dd dynamoDocument
	if err := attributevalue.UnmarshalMap(result.Item, &dd); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	return json.RawMessage(dd.Doc), true, nil
}

func (s *DynamoStore) List(ctx context.Context, collection string) ([]json.RawMessage, error) {
	result, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("#c = :c"),
		ExpressionAttributeNames: map[string]string{
			"#c": "collection",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: collection},
		},
		ScanIndexForward: aws.Bool(true), // Ascending order by id
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	docs := make([]json.RawMessage, 0, len(result.Items))
	for _, item := range result.Items {
		var dd dynamoDocument
		if err := attributevalue.UnmarshalMap(item, &dd); err != nil {
			continue
		}
		docs = append(docs, json.RawMessage(dd.Doc))
	}
	return docs, nil
}

func (s *DynamoStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"collection": &types.AttributeValueMemberS{Value: collection},
			"id":         &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}
