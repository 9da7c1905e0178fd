package moderation

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/smartgiftfinder/giftfinder/internal/logging"
)

const minConfidence = 60

// moderationClient is the slice of the Rekognition API we use.
type moderationClient interface {
	DetectModerationLabels(ctx context.Context, input *rekognition.DetectModerationLabelsInput, opts ...func(*rekognition.Options)) (*rekognition.DetectModerationLabelsOutput, error)
}

// Result reports a moderation verdict for one image.
type Result struct {
	Approved bool     `json:"approved"`
	Labels   []string `json:"labels,omitempty"`
}

// ImageModerator screens uploaded cover images before they are stored.
//
// Unlike the rate limiter, this path fails closed: an image we could not
// screen is rejected, because the cost of serving an unscreened image is
// higher than asking the editor to retry.
type ImageModerator struct {
	client moderationClient
	logger *logging.Logger
}

// NewImageModerator builds a moderator using ambient AWS credentials.
func NewImageModerator(ctx context.Context, region string, logger *logging.Logger) (*ImageModerator, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return &ImageModerator{
		client: rekognition.NewFromConfig(cfg),
		logger: logger,
	}, nil
}

// NewImageModeratorWithClient wires a concrete client; tests use this.
func NewImageModeratorWithClient(client moderationClient, logger *logging.Logger) *ImageModerator {
	return &ImageModerator{client: client, logger: logger}
}

// CheckImage screens raw image bytes. Approved is false whenever any
// moderation label clears the confidence floor, or the check itself fails.
func (m *ImageModerator) CheckImage(ctx context.Context, data []byte) (*Result, error) {
	out, err := m.client.DetectModerationLabels(ctx, &rekognition.DetectModerationLabelsInput{
		Image:         &types.Image{Bytes: data},
		MinConfidence: aws.Float32(minConfidence),
	})
	if err != nil {
		m.logger.Error("Image moderation check failed", logging.WithField("error", err.Error()))
		return nil, fmt.Errorf("moderation check failed: %w", err)
	}

	labels := make([]string, 0, len(out.ModerationLabels))
	for _, label := range out.ModerationLabels {
		labels = append(labels, aws.ToString(label.Name))
	}

	if len(labels) > 0 {
		m.logger.Warn("Image rejected by moderation", logging.WithField("labels", labels))
		return &Result{Approved: false, Labels: labels}, nil
	}
	return &Result{Approved: true}, nil
}
