package events

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"transcribe-beautifier/internal/app/errors"
	"transcribe-beautifier/internal/app/storage"
)

const putEvent = `{
  "Records": [
    {
      "eventVersion": "2.1",
      "eventSource": "aws:s3",
      "awsRegion": "us-west-2",
      "eventName": "ObjectCreated:Put",
      "s3": {
        "bucket": {"name": "media"},
        "object": {"key": "input/team+sync%282%29.mp4", "size": 1024}
      }
    },
    {
      "eventSource": "aws:s3",
      "eventName": "ObjectRemoved:Delete",
      "s3": {"bucket": {"name": "media"}, "object": {"key": "input/old.mp4"}}
    }
  ]
}`

func TestParseNotification(t *testing.T) {
	refs, err := ParseNotification([]byte(putEvent))
	require.NoError(t, err)
	assert.Equal(t, []storage.ObjectRef{{Bucket: "media", Key: "input/team sync(2).mp4"}}, refs)
}

func TestParseNotificationEdgeCases(t *testing.T) {
	testCases := []struct {
		name     string
		body     string
		expected int
		err      error
	}{
		{name: "test event", body: `{"Service":"Amazon S3","Event":"s3:TestEvent"}`, expected: 0},
		{name: "no records", body: `{"Records":[]}`, expected: 0},
		{name: "minio event name", body: `{"Records":[{"eventName":"s3:ObjectCreated:Put","s3":{"bucket":{"name":"b"},"object":{"key":"k.json"}}}]}`, expected: 1},
		{name: "invalid json", body: `{"Records":`, err: errors.ErrMalformedEvent},
		{name: "missing key", body: `{"Records":[{"s3":{"bucket":{"name":"b"},"object":{}}}]}`, err: errors.ErrMalformedEvent},
		{name: "bad escape", body: `{"Records":[{"s3":{"bucket":{"name":"b"},"object":{"key":"a%zz"}}}]}`, err: errors.ErrMalformedEvent},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			refs, err := ParseNotification([]byte(tc.body))
			if tc.err != nil {
				assert.True(t, errors.Is(err, tc.err), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, refs, tc.expected)
		})
	}
}

func TestDispatch(t *testing.T) {
	refs := []storage.ObjectRef{
		{Bucket: "media", Key: "a.json"},
		{Bucket: "media", Key: "b.json"},
		{Bucket: "media", Key: "a.json"},
		{Bucket: "media", Key: "skip.txt"},
		{Bucket: "media", Key: "broken.json"},
	}

	var calls atomic.Int32
	handler := func(_ context.Context, ref storage.ObjectRef) (string, error) {
		calls.Add(1)
		switch {
		case strings.HasSuffix(ref.Key, ".txt"):
			return "", errors.Wrap(errors.ErrUnsupportedKey, ref.Key)
		case ref.Key == "broken.json":
			return "", errors.ErrMalformedToken
		}
		return strings.TrimSuffix(ref.Key, ".json") + ".txt", nil
	}

	outcomes, err := Dispatch(context.Background(), refs, handler, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrMalformedToken))
	assert.Contains(t, err.Error(), "s3://media/broken.json")

	assert.EqualValues(t, 4, calls.Load(), "duplicate refs are handled once")
	require.Len(t, outcomes, 4)
	assert.Equal(t, Outcome{Bucket: "media", Key: "a.json", Result: "a.txt"}, outcomes[0])
	assert.Equal(t, "b.txt", outcomes[1].Result)
	assert.True(t, outcomes[2].Skipped)
	assert.NotEmpty(t, outcomes[2].Reason)
	assert.NotEmpty(t, outcomes[3].Error)

	assert.Equal(t, []Outcome{outcomes[3]}, Failed(outcomes))
}

func TestDispatchRespectsConcurrency(t *testing.T) {
	refs := make([]storage.ObjectRef, 8)
	for i := range refs {
		refs[i] = storage.ObjectRef{Bucket: "media", Key: string(rune('a'+i)) + ".json"}
	}

	var inFlight, peak atomic.Int32
	handler := func(context.Context, storage.ObjectRef) (string, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return "ok", nil
	}

	outcomes, err := Dispatch(context.Background(), refs, handler, 3)
	require.NoError(t, err)
	assert.Len(t, outcomes, 8)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestDispatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	outcomes, err := Dispatch(ctx, []storage.ObjectRef{{Bucket: "b", Key: "k"}},
		func(context.Context, storage.ObjectRef) (string, error) {
			t.Fatal("handler must not run")
			return "", nil
		}, 1)

	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, outcomes, 1)
	assert.NotEmpty(t, outcomes[0].Error)
}

type chanListener struct {
	ch chan storage.Notification
}

func (l *chanListener) Listen(context.Context, string, string, string) <-chan storage.Notification {
	return l.ch
}

func TestWatch(t *testing.T) {
	listener := &chanListener{ch: make(chan storage.Notification, 4)}
	listener.ch <- storage.Notification{Ref: storage.ObjectRef{Bucket: "media", Key: "output/a.json"}}
	listener.ch <- storage.Notification{Err: errors.New("connection reset")}
	listener.ch <- storage.Notification{Ref: storage.ObjectRef{Bucket: "media", Key: "output/b.json"}}
	close(listener.ch)

	var handled []string
	handler := func(_ context.Context, ref storage.ObjectRef) (string, error) {
		handled = append(handled, ref.Key)
		if ref.Key == "output/a.json" {
			return "", errors.ErrObjectNotFound
		}
		return "output/b.txt", nil
	}

	err := Watch(context.Background(), listener, WatchOptions{Bucket: "media", Prefix: "output/", Suffix: ".json"}, handler, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, []string{"output/a.json", "output/b.json"}, handled)
}

func TestWatchStopsOnCancel(t *testing.T) {
	listener := &chanListener{ch: make(chan storage.Notification)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Watch(ctx, listener, WatchOptions{Bucket: "media"}, func(context.Context, storage.ObjectRef) (string, error) {
		return "", nil
	}, zap.NewNop())
	assert.ErrorIs(t, err, context.Canceled)
}
