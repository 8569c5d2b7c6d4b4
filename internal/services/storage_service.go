// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hirehub/hirehub-backend/internal/apperror"
	"github.com/hirehub/hirehub-backend/internal/config"
	"github.com/hirehub/hirehub-backend/internal/utils"
)

// MaxResumeSize is the largest resume accepted, in bytes.
const MaxResumeSize = 5 * 1024 * 1024

var resumeTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

type StorageService struct {
	s3Client s3iface.S3API
	config   *config.Config
}

type UploadResult struct {
	URL      string `json:"url"`
	Key      string `json:"key"`
	Size     int64  `json:"size"`
	MimeType string `json:"mime_type"`
	SHA256   string `json:"sha256"`
}

// ResumeFile is an uploaded resume already read into memory.
type ResumeFile struct {
	Filename string
	Data     []byte
}

func NewStorageService(config *config.Config) (*StorageService, error) {
	if config.AWS.AccessKeyID == "" {
		// Return service without S3 for local development
		return &StorageService{config: config}, nil
	}

	// Create AWS session
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(config.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			config.AWS.AccessKeyID,
			config.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &StorageService{
		s3Client: s3.New(sess),
		config:   config,
	}, nil
}

// NewStorageServiceWithClient uses an existing S3 client.
func NewStorageServiceWithClient(config *config.Config, client s3iface.S3API) *StorageService {
	return &StorageService{s3Client: client, config: config}
}

// UploadResume validates and stores a candidate's resume under
// resumes/<candidate>/.
func (s *StorageService) UploadResume(ctx context.Context, candidateID uint, file ResumeFile) (*UploadResult, error) {
	size := int64(len(file.Data))
	if size == 0 {
		return nil, apperror.New(apperror.KindInvalidInput, "resume file is empty")
	}
	if size > MaxResumeSize {
		return nil, apperror.New(apperror.KindInvalidInput,
			fmt.Sprintf("file size %d bytes exceeds maximum allowed size %d bytes", size, MaxResumeSize))
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := resumeTypes[ext]
	if !ok {
		return nil, apperror.New(apperror.KindInvalidInput, fmt.Sprintf("file type %s is not allowed", ext))
	}
	if ext == ".pdf" && http.DetectContentType(file.Data) != contentType {
		return nil, apperror.New(apperror.KindInvalidInput, "file content is not a PDF")
	}

	key := s.generateFileName(file.Filename, fmt.Sprintf("resumes/%d", candidateID))
	hash := utils.ContentHash(file.Data)

	if s.s3Client != nil {
		return s.uploadToS3(ctx, file.Data, key, contentType, hash)
	}
	return s.uploadToLocal(file.Data, key, contentType, hash), nil
}

func (s *StorageService) uploadToS3(ctx context.Context, fileBytes []byte, key, contentType, hash string) (*UploadResult, error) {
	params := &s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.ResumeBucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
		Metadata:      map[string]*string{"sha256": aws.String(hash)},
	}

	if _, err := s.s3Client.PutObjectWithContext(ctx, params); err != nil {
		return nil, apperror.Internal("failed to upload to S3", err)
	}

	return &UploadResult{
		URL:      s.getS3URL(key),
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
		SHA256:   hash,
	}, nil
}

func (s *StorageService) uploadToLocal(fileBytes []byte, key, contentType, hash string) *UploadResult {
	logrus.WithField("key", key).Info("S3 not configured, resume kept as local reference")
	return &UploadResult{
		URL:      fmt.Sprintf("%s/uploads/%s", strings.TrimRight(s.config.Frontend.BaseURL, "/"), key),
		Key:      key,
		Size:     int64(len(fileBytes)),
		MimeType: contentType,
		SHA256:   hash,
	}
}

// GeneratePresignedURL returns a time-limited download link for key.
func (s *StorageService) GeneratePresignedURL(key string, expiration time.Duration) (string, error) {
	if s.s3Client == nil {
		return "", fmt.Errorf("S3 client not configured")
	}

	req, _ := s.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.config.AWS.ResumeBucket),
		Key:    aws.String(key),
	})

	url, err := req.Presign(expiration)
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return url, nil
}

func (s *StorageService) generateFileName(originalName, folder string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	timestamp := time.Now().UTC().Format("20060102")
	filename := fmt.Sprintf("%s_%s%s", timestamp, uuid.NewString()[:8], ext)

	if folder != "" {
		return fmt.Sprintf("%s/%s", folder, filename)
	}
	return filename
}

func (s *StorageService) getS3URL(key string) string {
	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", strings.TrimRight(s.config.AWS.CloudFrontURL, "/"), key)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s",
		s.config.AWS.ResumeBucket, s.config.AWS.Region, key)
}
