package s3

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeObjectAPI struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	putErr  error
	headErr error
}

func (f *fakeObjectAPI) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, _ := io.ReadAll(in.Body)
	f.puts = append(f.puts, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeObjectAPI) HeadBucket(_ context.Context, _ *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func TestDocumentStore_Upload(t *testing.T) {
	api := &fakeObjectAPI{}
	store := NewDocumentStore(api, Config{Region: "ap-south-1"})

	if err := store.Upload(context.Background(), "u1/front-1700000000000.png", []byte("img"), "image/png"); err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if len(api.puts) != 1 {
		t.Fatalf("expected 1 put, got %d", len(api.puts))
	}
	in := api.puts[0]
	if aws.ToString(in.Bucket) != DefaultBucket {
		t.Errorf("bucket = %q, want %q", aws.ToString(in.Bucket), DefaultBucket)
	}
	if aws.ToString(in.ContentType) != "image/png" {
		t.Errorf("content type = %q", aws.ToString(in.ContentType))
	}
	if aws.ToString(in.IfNoneMatch) != "*" {
		t.Errorf("expected conditional put, got IfNoneMatch=%q", aws.ToString(in.IfNoneMatch))
	}
	if string(api.bodies[0]) != "img" {
		t.Errorf("body = %q", api.bodies[0])
	}
}

func TestDocumentStore_UploadError(t *testing.T) {
	cause := errors.New("boom")
	store := NewDocumentStore(&fakeObjectAPI{putErr: cause}, Config{Bucket: "b"})

	err := store.Upload(context.Background(), "k", []byte("x"), "image/jpeg")
	if !errors.Is(err, cause) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
}

func TestDocumentStore_PublicURL(t *testing.T) {
	cases := []struct {
		name string
		cfg  Config
		want string
	}{
		{"public base", Config{Bucket: "b", PublicBaseURL: "https://cdn.example.com/docs/"}, "https://cdn.example.com/docs/u1/front-1.png"},
		{"endpoint", Config{Bucket: "b", Endpoint: "http://localhost:9000"}, "http://localhost:9000/b/u1/front-1.png"},
		{"aws", Config{Bucket: "b", Region: "ap-south-1"}, "https://b.s3.ap-south-1.amazonaws.com/u1/front-1.png"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := NewDocumentStore(&fakeObjectAPI{}, tc.cfg).PublicURL("u1/front-1.png")
			if got != tc.want {
				t.Errorf("PublicURL = %q, want %q", got, tc.want)
			}
		})
	}
}
