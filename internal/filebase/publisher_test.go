package filebase

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nft_minter/internal/config"
	"nft_minter/internal/model"
)

type fakeStore struct {
	cid     string
	err     error
	uploads map[string][]byte
}

func (s *fakeStore) Upload(_ context.Context, name string, data []byte) (*model.UploadResult, error) {
	if s.uploads == nil {
		s.uploads = make(map[string][]byte)
	}
	s.uploads[name] = data
	if s.err != nil {
		return nil, s.err
	}
	return &model.UploadResult{CID: s.cid}, nil
}

func TestPublisher_Publish(t *testing.T) {
	tests := []struct {
		name    string
		cid     string
		err     error
		want    string
		wantErr string
	}{
		{
			name: "上传成功返回网关地址",
			cid:  "QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
			want: "https://ipfs.filebase.io/ipfs/QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG",
		},
		{
			name:    "上传失败保留原始错误信息",
			err:     errors.New("SignatureDoesNotMatch"),
			wantErr: "SignatureDoesNotMatch",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{cid: tt.cid, err: tt.err}
			p := NewPublisher(store, "ipfs.filebase.io/")
			p.now = func() time.Time { return time.UnixMilli(1700000000123) }

			got, err := p.Publish(context.Background(), model.NewMetadata("Test NFT", "https://example.com/a.jpg"))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			data, ok := store.uploads["metadata-1700000000123.json"]
			require.True(t, ok, "上传的文件名应当基于时间戳")

			var uploaded model.Metadata
			require.NoError(t, json.Unmarshal(data, &uploaded))
			assert.Equal(t, "Test NFT", uploaded.Name)
		})
	}
}

func TestPublisher_URIPattern(t *testing.T) {
	pattern := regexp.MustCompile(`^https://ipfs\.filebase\.io/ipfs/(.+)$`)
	for _, cid := range []string{"Qm1", "bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi"} {
		store := &fakeStore{cid: cid}
		uri, err := NewPublisher(store, "ipfs.filebase.io").Publish(context.Background(), map[string]string{"k": "v"})
		require.NoError(t, err)

		m := pattern.FindStringSubmatch(uri)
		require.Len(t, m, 2)
		assert.Equal(t, cid, m[1])
	}
}

func TestPublisher_UnserializableDocument(t *testing.T) {
	store := &fakeStore{cid: "Qm1"}
	_, err := NewPublisher(store, "ipfs.filebase.io").Publish(context.Background(), map[string]any{"bad": make(chan int)})
	assert.Error(t, err)
	assert.Empty(t, store.uploads)
}

func TestEnvPublisher_ReadsConfigPerCall(t *testing.T) {
	var seen []config.FilebaseConfig
	store := &fakeStore{cid: "QmEnv"}
	bucket := "first"

	p := &EnvPublisher{
		load: func() config.FilebaseConfig {
			return config.FilebaseConfig{Key: "k", Secret: "s", Bucket: bucket, Gateway: "gw.example.com"}
		},
		newStore: func(cfg config.FilebaseConfig) (ObjectStore, error) {
			seen = append(seen, cfg)
			return store, nil
		},
	}

	uri, err := p.UploadMetadata(context.Background(), model.NewMetadata("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, "https://gw.example.com/ipfs/QmEnv", uri)

	bucket = "second"
	_, err = p.Publish(context.Background(), map[string]string{})
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, "first", seen[0].Bucket)
	assert.Equal(t, "second", seen[1].Bucket)
}

func TestEnvPublisher_MissingCredentials(t *testing.T) {
	t.Setenv("FILEBASE_KEY", "")
	t.Setenv("FILEBASE_SECRET", "")
	t.Setenv("FILEBASE_BUCKET", "")
	t.Setenv("NEXT_PUBLIC_FILEBASE_KEY", "")
	t.Setenv("NEXT_PUBLIC_FILEBASE_SECRET", "")
	t.Setenv("NEXT_PUBLIC_FILEBASE_BUCKET", "")

	_, err := NewEnvPublisher().Publish(context.Background(), map[string]string{})
	assert.ErrorIs(t, err, ErrMissingCredentials)
}
