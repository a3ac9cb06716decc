// internal/services/storage_service_test.go
package services_test

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftkala/craftkala-backend/internal/services"
)

func TestStoreDataURL(t *testing.T) {
	docs := &fakeDocumentStore{}
	svc := services.NewStorageServiceWithStore(docs)

	ref, err := svc.StoreDataURL("applications/abc", "profile-photo", photoDataURL())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(ref, "applications/abc/"))
	assert.True(t, strings.HasSuffix(ref, ".png"))
	assert.Contains(t, ref, "profile-photo")
	require.Len(t, docs.keys, 1)
	assert.Equal(t, ref, docs.keys[0])
}

func TestStoreDataURLRejectsMalformedPayloads(t *testing.T) {
	svc := services.NewStorageServiceWithStore(&fakeDocumentStore{})

	var storageErr *services.DocumentStorageError

	_, err := svc.StoreDataURL("p", "doc", "https://example.com/photo.png")
	require.ErrorAs(t, err, &storageErr)

	_, err = svc.StoreDataURL("p", "doc", "data:image/png;base64,not_base64!!!")
	require.ErrorAs(t, err, &storageErr)

	_, err = svc.StoreDataURL("p", "doc", "data:image/png;base64,"+base64.StdEncoding.EncodeToString(nil))
	require.ErrorAs(t, err, &storageErr)
}

func TestStoreDataURLPropagatesUpstreamFailure(t *testing.T) {
	docs := &fakeDocumentStore{fail: true}
	svc := services.NewStorageServiceWithStore(docs)

	_, err := svc.StoreDataURL("p", "doc", photoDataURL())

	var storageErr *services.DocumentStorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "doc", storageErr.Ref)
}
