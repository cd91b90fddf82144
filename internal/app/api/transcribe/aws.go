package transcribe

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awstranscribe "github.com/aws/aws-sdk-go-v2/service/transcribe"
	"github.com/aws/aws-sdk-go-v2/service/transcribe/types"
	"go.uber.org/zap"
)

// transcribeAPI is the subset of the service client used here.
type transcribeAPI interface {
	StartTranscriptionJob(ctx context.Context, in *awstranscribe.StartTranscriptionJobInput, optFns ...func(*awstranscribe.Options)) (*awstranscribe.StartTranscriptionJobOutput, error)
	GetTranscriptionJob(ctx context.Context, in *awstranscribe.GetTranscriptionJobInput, optFns ...func(*awstranscribe.Options)) (*awstranscribe.GetTranscriptionJobOutput, error)
}

// AWSClient runs jobs on Amazon Transcribe.
type AWSClient struct {
	api    transcribeAPI
	logger *zap.Logger
}

// NewAWSClient loads the default AWS configuration for region.
func NewAWSClient(ctx context.Context, region string, logger *zap.Logger) (*AWSClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	return &AWSClient{api: awstranscribe.NewFromConfig(cfg), logger: logger}, nil
}

func (c *AWSClient) Start(ctx context.Context, req JobRequest) error {
	in := &awstranscribe.StartTranscriptionJobInput{
		TranscriptionJobName: aws.String(req.Name),
		Media:                &types.Media{MediaFileUri: aws.String(req.MediaURI)},
		MediaFormat:          types.MediaFormat(req.MediaFormat),
		LanguageCode:         types.LanguageCode(req.Language),
		OutputBucketName:     aws.String(req.OutputBucket),
		OutputKey:            aws.String(req.OutputKey),
	}
	if req.ShowSpeakerLabels {
		in.Settings = &types.Settings{
			ShowSpeakerLabels: aws.Bool(true),
			MaxSpeakerLabels:  aws.Int32(int32(req.MaxSpeakers)),
		}
	}

	if _, err := c.api.StartTranscriptionJob(ctx, in); err != nil {
		return fmt.Errorf("failed to start transcription job %s: %w", req.Name, err)
	}

	c.logger.Info("started transcription job",
		zap.String("job", req.Name),
		zap.String("media", req.MediaURI),
		zap.String("output", req.OutputBucket+"/"+req.OutputKey))
	return nil
}

func (c *AWSClient) Status(ctx context.Context, name string) (JobStatus, error) {
	out, err := c.api.GetTranscriptionJob(ctx, &awstranscribe.GetTranscriptionJobInput{
		TranscriptionJobName: aws.String(name),
	})
	if err != nil {
		return JobStatus{}, fmt.Errorf("failed to get transcription job %s: %w", name, err)
	}
	if out.TranscriptionJob == nil {
		return JobStatus{}, fmt.Errorf("transcription job %s: empty response", name)
	}

	job := out.TranscriptionJob
	return JobStatus{
		Name:          name,
		State:         State(job.TranscriptionJobStatus),
		FailureReason: aws.ToString(job.FailureReason),
	}, nil
}
