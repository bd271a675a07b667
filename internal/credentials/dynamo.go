package credentials

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscreds "github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/teraonavi/navi-admin/internal/config"
)

const (
	tableSuffix     = "auth_clients"
	companyIDIndex  = "idx_company_id"
	createdAtLayout = "2006-01-02T15:04:05Z"
)

// DynamoStore keeps credentials in a DynamoDB table keyed by client_id
// with a global secondary index on company_id.
type DynamoStore struct {
	client *dynamodb.Client
	table  string
}

// NewDynamoStore builds a store from configuration. A custom endpoint
// (DynamoDB Local) is honored when set.
func NewDynamoStore(cfg *config.Config) (*DynamoStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.DynamoRegion),
		awsconfig.WithCredentialsProvider(awscreds.NewStaticCredentialsProvider(
			cfg.DynamoAccessKey,
			cfg.DynamoSecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		}
	})

	return &DynamoStore{
		client: client,
		table:  cfg.DynamoTablePrefix + tableSuffix,
	}, nil
}

// Put writes a record keyed by ClientID. company_id is always written
// as a number; the string typing seen in legacy rows is read-only
// compatibility, never reproduced.
func (s *DynamoStore) Put(ctx context.Context, cred Credential) error {
	active := "0"
	if cred.IsActive {
		active = "1"
	}

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item: map[string]ddbtypes.AttributeValue{
			"client_id":   &ddbtypes.AttributeValueMemberS{Value: cred.ClientID},
			"company_id":  &ddbtypes.AttributeValueMemberN{Value: strconv.FormatUint(cred.CompanyID, 10)},
			"secret_hash": &ddbtypes.AttributeValueMemberS{Value: cred.SecretHash},
			"is_active":   &ddbtypes.AttributeValueMemberN{Value: active},
			"created_at":  &ddbtypes.AttributeValueMemberS{Value: cred.CreatedAt.UTC().Format(createdAtLayout)},
		},
	})
	return err
}

// Get returns the record for a client id, or nil when absent.
func (s *DynamoStore) Get(ctx context.Context, clientID string) (*Credential, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]ddbtypes.AttributeValue{
			"client_id": &ddbtypes.AttributeValueMemberS{Value: clientID},
		},
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, nil
	}
	cred := parseItem(out.Item)
	return &cred, nil
}

// QueryByCompany queries the company_id index, paginating until
// exhausted.
func (s *DynamoStore) QueryByCompany(ctx context.Context, match CompanyMatch) ([]Credential, error) {
	var creds []Credential
	var startKey map[string]ddbtypes.AttributeValue

	for {
		out, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(s.table),
			IndexName:              aws.String(companyIDIndex),
			KeyConditionExpression: aws.String("company_id = :company_id"),
			ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
				":company_id": companyIDValue(match),
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		for _, item := range out.Items {
			creds = append(creds, parseItem(item))
		}
		if out.LastEvaluatedKey == nil {
			return creds, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// ScanByCompany scans the whole table filtering on company_id,
// paginating until exhausted.
func (s *DynamoStore) ScanByCompany(ctx context.Context, match CompanyMatch) ([]Credential, error) {
	var creds []Credential
	var startKey map[string]ddbtypes.AttributeValue

	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(s.table),
			FilterExpression: aws.String("company_id = :company_id"),
			ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
				":company_id": companyIDValue(match),
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		for _, item := range out.Items {
			creds = append(creds, parseItem(item))
		}
		if out.LastEvaluatedKey == nil {
			return creds, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// SetActive flips is_active without deleting the record.
func (s *DynamoStore) SetActive(ctx context.Context, clientID string, active bool) error {
	value := "0"
	if active {
		value = "1"
	}
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.table),
		Key: map[string]ddbtypes.AttributeValue{
			"client_id": &ddbtypes.AttributeValueMemberS{Value: clientID},
		},
		UpdateExpression: aws.String("SET is_active = :active"),
		ExpressionAttributeValues: map[string]ddbtypes.AttributeValue{
			":active": &ddbtypes.AttributeValueMemberN{Value: value},
		},
	})
	return err
}

// Delete removes the record for a client id.
func (s *DynamoStore) Delete(ctx context.Context, clientID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key: map[string]ddbtypes.AttributeValue{
			"client_id": &ddbtypes.AttributeValueMemberS{Value: clientID},
		},
	})
	return err
}

// Ping verifies the table is reachable.
func (s *DynamoStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(s.table),
	})
	return err
}

func companyIDValue(match CompanyMatch) ddbtypes.AttributeValue {
	value := strconv.FormatUint(match.CompanyID, 10)
	if match.Numeric {
		return &ddbtypes.AttributeValueMemberN{Value: value}
	}
	return &ddbtypes.AttributeValueMemberS{Value: value}
}

// parseItem tolerates the historical company_id type drift: the
// attribute may arrive as a number or a string.
func parseItem(item map[string]ddbtypes.AttributeValue) Credential {
	var cred Credential

	if v, ok := item["client_id"].(*ddbtypes.AttributeValueMemberS); ok {
		cred.ClientID = v.Value
	}
	switch v := item["company_id"].(type) {
	case *ddbtypes.AttributeValueMemberN:
		cred.CompanyID, _ = strconv.ParseUint(v.Value, 10, 64)
	case *ddbtypes.AttributeValueMemberS:
		cred.CompanyID, _ = strconv.ParseUint(v.Value, 10, 64)
	}
	if v, ok := item["secret_hash"].(*ddbtypes.AttributeValueMemberS); ok {
		cred.SecretHash = v.Value
	}
	if v, ok := item["is_active"].(*ddbtypes.AttributeValueMemberN); ok {
		cred.IsActive = v.Value == "1"
	}
	if v, ok := item["created_at"].(*ddbtypes.AttributeValueMemberS); ok {
		if t, err := time.Parse(createdAtLayout, v.Value); err == nil {
			cred.CreatedAt = t
		}
	}

	return cred
}
