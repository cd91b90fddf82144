package events

import (
	"encoding/json"
	"net/url"
	"strings"

	"transcribe-beautifier/internal/app/errors"
	"transcribe-beautifier/internal/app/storage"
)

// Notification is the storage event envelope. S3 and MinIO share it.
type Notification struct {
	Records []Record `json:"Records"`
	// Event is set on the test message S3 sends when a trigger is configured.
	Event string `json:"Event,omitempty"`
}

type Record struct {
	EventSource string   `json:"eventSource"`
	EventName   string   `json:"eventName"`
	AWSRegion   string   `json:"awsRegion,omitempty"`
	EventTime   string   `json:"eventTime,omitempty"`
	S3          S3Entity `json:"s3"`
}

type S3Entity struct {
	Bucket struct {
		Name string `json:"name"`
	} `json:"bucket"`
	Object struct {
		Key  string `json:"key"`
		Size int64  `json:"size,omitempty"`
	} `json:"object"`
}

// ParseNotification extracts the created objects named by a notification.
// Keys arrive form-encoded and are decoded. Records for other event types are
// ignored; a test message yields no objects.
func ParseNotification(body []byte) ([]storage.ObjectRef, error) {
	var n Notification
	if err := json.Unmarshal(body, &n); err != nil {
		return nil, errors.Wrap(errors.ErrMalformedEvent, err.Error())
	}

	refs := make([]storage.ObjectRef, 0, len(n.Records))
	for i, rec := range n.Records {
		if rec.EventName != "" && !strings.Contains(rec.EventName, "ObjectCreated") {
			continue
		}
		bucket := rec.S3.Bucket.Name
		if bucket == "" || rec.S3.Object.Key == "" {
			return nil, errors.Wrapf(errors.ErrMalformedEvent, "record %d has no bucket or key", i)
		}
		key, err := url.QueryUnescape(rec.S3.Object.Key)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrMalformedEvent, "record %d key %q", i, rec.S3.Object.Key)
		}
		refs = append(refs, storage.ObjectRef{Bucket: bucket, Key: key})
	}
	return refs, nil
}
