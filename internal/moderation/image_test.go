package moderation

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/smartgiftfinder/giftfinder/internal/logging"
)

type stubModerationClient struct {
	labels []string
	err    error
}

func (s *stubModerationClient) DetectModerationLabels(ctx context.Context, input *rekognition.DetectModerationLabelsInput, opts ...func(*rekognition.Options)) (*rekognition.DetectModerationLabelsOutput, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := &rekognition.DetectModerationLabelsOutput{}
	for _, name := range s.labels {
		out.ModerationLabels = append(out.ModerationLabels, types.ModerationLabel{
			Name:       aws.String(name),
			Confidence: aws.Float32(95),
		})
	}
	return out, nil
}

func newTestModerator(client moderationClient) *ImageModerator {
	return NewImageModeratorWithClient(client, logging.NewWithOutput(logging.LevelError, io.Discard))
}

func TestCheckImage_ApprovesCleanImage(t *testing.T) {
	moderator := newTestModerator(&stubModerationClient{})

	result, err := moderator.CheckImage(context.Background(), []byte("image-bytes"))
	if err != nil {
		t.Fatalf("CheckImage error = %v", err)
	}
	if !result.Approved {
		t.Error("clean image not approved")
	}
	if len(result.Labels) != 0 {
		t.Errorf("Labels = %v, want none", result.Labels)
	}
}

func TestCheckImage_RejectsLabeledImage(t *testing.T) {
	moderator := newTestModerator(&stubModerationClient{labels: []string{"Violence", "Weapons"}})

	result, err := moderator.CheckImage(context.Background(), []byte("image-bytes"))
	if err != nil {
		t.Fatalf("CheckImage error = %v", err)
	}
	if result.Approved {
		t.Error("labeled image approved")
	}
	if len(result.Labels) != 2 {
		t.Errorf("Labels = %v, want 2 entries", result.Labels)
	}
}

func TestCheckImage_FailsClosedOnError(t *testing.T) {
	moderator := newTestModerator(&stubModerationClient{err: errors.New("throttled")})

	result, err := moderator.CheckImage(context.Background(), []byte("image-bytes"))
	if err == nil {
		t.Fatal("expected error when the check fails")
	}
	if result != nil {
		t.Errorf("result = %+v, want nil", result)
	}
}
