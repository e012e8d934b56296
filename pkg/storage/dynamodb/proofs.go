package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/habit-pools/pkg/models"
	"github.com/chris/habit-pools/pkg/storage"
)

// CreateProof stores a new proof.
func (s *Store) CreateProof(ctx context.Context, proof *models.Proof) error {
	av, err := attributevalue.MarshalMap(proof)
	if err != nil {
		return fmt.Errorf("failed to marshal proof: %w", err)
	}
	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Proofs),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("proof with ID %s already exists", proof.Id)
		}
		return fmt.Errorf("failed to create proof in DynamoDB: %w", err)
	}
	return nil
}

// GetProof retrieves a proof by its ID.
func (s *Store) GetProof(ctx context.Context, proofID string) (*models.Proof, error) {
	var proof models.Proof
	if err := s.getItem(ctx, s.Tables.Proofs, map[string]string{"id": proofID}, &proof); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("proof with ID %s: %w", proofID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get proof: %w", err)
	}
	return &proof, nil
}

// ListProofsByMember retrieves a member's proofs in submission order.
func (s *Store) ListProofsByMember(ctx context.Context, poolID, userID string) ([]models.Proof, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Proofs),
		IndexName:              aws.String(poolIDIndex),
		KeyConditionExpression: aws.String("pool_id = :pool_id"),
		FilterExpression:       aws.String("user_id = :user_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pool_id": strAV(poolID),
			":user_id": strAV(userID),
		},
	}
	var proofs []models.Proof
	if err := s.query(ctx, input, &proofs); err != nil {
		return nil, fmt.Errorf("failed to list proofs: %w", err)
	}
	sort.Slice(proofs, func(i, j int) bool { return proofs[i].SubmittedAt.Before(proofs[j].SubmittedAt) })
	return proofs, nil
}

// ResolveProof writes a verdict onto a proof that is still in one of the
// given states. The status condition makes each transition happen once.
func (s *Store) ResolveProof(ctx context.Context, proofID string, from []models.ProofStatus, verdict models.Verdict) error {
	flagsAV, err := attributevalue.Marshal(append([]string{}, verdict.Flags...))
	if err != nil {
		return fmt.Errorf("failed to marshal flags: %w", err)
	}
	confidenceAV, err := attributevalue.Marshal(verdict.Confidence)
	if err != nil {
		return fmt.Errorf("failed to marshal confidence: %w", err)
	}

	values := map[string]types.AttributeValue{
		":status":     strAV(string(verdict.Status)),
		":confidence": confidenceAV,
		":reasoning":  strAV(verdict.Reasoning),
		":flags":      flagsAV,
		":degraded":   &types.AttributeValueMemberBOOL{Value: verdict.Degraded},
	}
	fromValues := make([]string, len(from))
	for i, st := range from {
		fromValues[i] = string(st)
	}
	update := "SET #status = :status, ai_confidence = :confidence, ai_reasoning = :reasoning, flags = :flags, degraded = :degraded"
	if verdict.Status.Terminal() {
		atAV, err := nowAV(verdict.At)
		if err != nil {
			return err
		}
		values[":resolved_at"] = atAV
		update += ", resolved_at = :resolved_at"
	}

	_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.Tables.Proofs),
		Key:                       map[string]types.AttributeValue{"id": strAV(proofID)},
		UpdateExpression:          aws.String(update),
		ConditionExpression:       aws.String("attribute_exists(id) AND " + inList("#status", "from", fromValues, values)),
		ExpressionAttributeNames:  map[string]string{"#status": "status"},
		ExpressionAttributeValues: values,
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return storage.ErrProofAlreadyResolved
		}
		return fmt.Errorf("failed to resolve proof: %w", err)
	}
	return nil
}

// CreateReview enqueues a peer review. An id that is already taken returns
// ErrReviewExists.
func (s *Store) CreateReview(ctx context.Context, review *models.ProofReview) error {
	av, err := attributevalue.MarshalMap(review)
	if err != nil {
		return fmt.Errorf("failed to marshal review: %w", err)
	}
	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.Tables.Reviews),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return fmt.Errorf("review with ID %s: %w", review.Id, storage.ErrReviewExists)
		}
		return fmt.Errorf("failed to create review in DynamoDB: %w", err)
	}
	return nil
}

// GetReview retrieves a review by its ID.
func (s *Store) GetReview(ctx context.Context, reviewID string) (*models.ProofReview, error) {
	var review models.ProofReview
	if err := s.getItem(ctx, s.Tables.Reviews, map[string]string{"id": reviewID}, &review); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("review with ID %s: %w", reviewID, storage.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

func (s *Store) pendingReviewsBy(ctx context.Context, index, attr, value string) ([]models.ProofReview, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Reviews),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String(fmt.Sprintf("%s = :value", attr)),
		FilterExpression:       aws.String("#status = :pending"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":value":   strAV(value),
			":pending": strAV(string(models.ReviewPending)),
		},
	}
	var reviews []models.ProofReview
	if err := s.query(ctx, input, &reviews); err != nil {
		return nil, fmt.Errorf("failed to list pending reviews: %w", err)
	}
	sort.Slice(reviews, func(i, j int) bool { return reviews[i].CreatedAt.Before(reviews[j].CreatedAt) })
	return reviews, nil
}

// ListPendingReviewsByReviewer retrieves the open reviews assigned to a reviewer.
func (s *Store) ListPendingReviewsByReviewer(ctx context.Context, reviewerID string) ([]models.ProofReview, error) {
	return s.pendingReviewsBy(ctx, reviewerIDIndex, "reviewer_id", reviewerID)
}

// ListPendingReviewsByPool retrieves the open reviews of a pool.
func (s *Store) ListPendingReviewsByPool(ctx context.Context, poolID string) ([]models.ProofReview, error) {
	return s.pendingReviewsBy(ctx, poolIDIndex, "pool_id", poolID)
}

// GetStaleReviews retrieves reviews still pending that were created before cutoff.
func (s *Store) GetStaleReviews(ctx context.Context, cutoff time.Time) ([]models.ProofReview, error) {
	cutoffAV, err := nowAV(cutoff)
	if err != nil {
		return nil, err
	}

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.Reviews),
		IndexName:              aws.String(statusCreatedAtIndex),
		KeyConditionExpression: aws.String("#status = :status AND created_at < :cutoff"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status": strAV(string(models.ReviewPending)),
			":cutoff": cutoffAV,
		},
	}
	var reviews []models.ProofReview
	if err := s.query(ctx, input, &reviews); err != nil {
		return nil, fmt.Errorf("failed to query for stale reviews: %w", err)
	}
	return reviews, nil
}

// ResolveReview resolves a pending review. The status condition guarantees a
// review is resolved exactly once.
func (s *Store) ResolveReview(ctx context.Context, reviewID string, status models.ReviewStatus, note, resolvedBy string, at time.Time) error {
	atAV, err := nowAV(at)
	if err != nil {
		return err
	}
	_, err = s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.Tables.Reviews),
		Key:                 map[string]types.AttributeValue{"id": strAV(reviewID)},
		UpdateExpression:    aws.String("SET #status = :status, note = :note, resolved_by = :resolved_by, resolved_at = :at"),
		ConditionExpression: aws.String("#status = :pending"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":status":      strAV(string(status)),
			":note":        strAV(note),
			":resolved_by": strAV(resolvedBy),
			":at":          atAV,
			":pending":     strAV(string(models.ReviewPending)),
		},
	})
	if err != nil {
		if isConditionalCheckFailed(err) {
			return storage.ErrReviewResolved
		}
		return fmt.Errorf("failed to resolve review: %w", err)
	}
	return nil
}

// IncrementDailyRecord bumps the proof count of a user's calendar day.
func (s *Store) IncrementDailyRecord(ctx context.Context, userID, day string) error {
	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(s.Tables.DailyRecords),
		Key: map[string]types.AttributeValue{
			"user_id": strAV(userID),
			"day":     strAV(day),
		},
		UpdateExpression: aws.String("ADD proof_count :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": numAV(1),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to increment daily record: %w", err)
	}
	return nil
}

// ListDailyRecords retrieves a user's daily habit history in day order.
func (s *Store) ListDailyRecords(ctx context.Context, userID string) ([]models.DailyHabitRecord, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.Tables.DailyRecords),
		KeyConditionExpression: aws.String("user_id = :user_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":user_id": strAV(userID),
		},
		ScanIndexForward: aws.Bool(true),
	}
	var records []models.DailyHabitRecord
	if err := s.query(ctx, input, &records); err != nil {
		return nil, fmt.Errorf("failed to list daily records: %w", err)
	}
	return records, nil
}
