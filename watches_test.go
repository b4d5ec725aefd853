package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createWatch(t *testing.T, r http.Handler, token, name, brand, reference string) watchResponse {
	t.Helper()
	resp := performRequest(r, http.MethodPost, "/watches",
		jsonBody(t, map[string]string{"name": name, "brand": brand, "reference": reference}), token, "application/json")
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var out watchResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	return out
}

func TestCreateWatch(t *testing.T) {
	r := newTestServer(t)
	out := register(t, r, "alice_99", "Abcdef1!")

	w := createWatch(t, r, out.Tokens.AccessToken, "Submariner", "Rolex", "126610LN")
	assert.NotEmpty(t, w.ID)
	assert.Equal(t, out.UserID, w.UserID)
	assert.Equal(t, "Submariner", w.Name)
}

func TestCreateWatchDuplicateReference(t *testing.T) {
	r := newTestServer(t)
	out := register(t, r, "alice_99", "Abcdef1!")
	createWatch(t, r, out.Tokens.AccessToken, "Submariner", "Rolex", "126610LN")

	resp := performRequest(r, http.MethodPost, "/watches",
		jsonBody(t, map[string]string{"name": "Another", "brand": "Rolex", "reference": "126610LN"}),
		out.Tokens.AccessToken, "application/json")
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestCreateWatchValidation(t *testing.T) {
	r := newTestServer(t)
	out := register(t, r, "alice_99", "Abcdef1!")

	resp := performRequest(r, http.MethodPost, "/watches",
		jsonBody(t, map[string]string{"name": "", "brand": "Rolex", "reference": "x"}),
		out.Tokens.AccessToken, "application/json")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// whitespace-only counts as empty
	resp = performRequest(r, http.MethodPost, "/watches",
		jsonBody(t, map[string]string{"name": "   ", "brand": "Rolex", "reference": "x"}),
		out.Tokens.AccessToken, "application/json")
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// over-long values are truncated, not rejected
	long := strings.Repeat("n", nameMaxLength+20)
	w := createWatch(t, r, out.Tokens.AccessToken, long, "Rolex", "ref-truncate")
	assert.Len(t, w.Name, nameMaxLength)

	// truncation respects rune boundaries and drops trailing whitespace
	padded := "  " + strings.Repeat("ü", nameMaxLength-1) + "  tail"
	w = createWatch(t, r, out.Tokens.AccessToken, padded, "Rolex", "ref-runes")
	assert.Equal(t, strings.Repeat("ü", nameMaxLength-1), w.Name)
}

func TestListWatchesPagingAndOwnership(t *testing.T) {
	r := newTestServer(t)
	alice := register(t, r, "alice_99", "Abcdef1!")
	bob := register(t, r, "bob_2024", "Abcdef1!")

	for i := 0; i < 3; i++ {
		createWatch(t, r, alice.Tokens.AccessToken, fmt.Sprintf("A%d", i), "Seiko", fmt.Sprintf("SKA-%d", i))
	}
	createWatch(t, r, bob.Tokens.AccessToken, "B0", "Omega", "OMG-0")

	var page struct {
		Items      []watchResponse `json:"items"`
		TotalItems int64           `json:"totalItems"`
		Take       int             `json:"take"`
		Skip       int             `json:"skip"`
	}

	resp := performRequest(r, http.MethodGet, "/watches", nil, alice.Tokens.AccessToken, "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	assert.Equal(t, int64(4), page.TotalItems)

	resp = performRequest(r, http.MethodGet, "/watches?onlyMyWatches=true", nil, alice.Tokens.AccessToken, "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	assert.Equal(t, int64(3), page.TotalItems)

	resp = performRequest(r, http.MethodGet, "/watches?take=2&skip=2&onlyMyWatches=true", nil, alice.Tokens.AccessToken, "")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	assert.Equal(t, int64(3), page.TotalItems)
	assert.Len(t, page.Items, 1)
}

func TestUpdateWatchOwnershipAndConflicts(t *testing.T) {
	r := newTestServer(t)
	alice := register(t, r, "alice_99", "Abcdef1!")
	bob := register(t, r, "bob_2024", "Abcdef1!")

	w := createWatch(t, r, alice.Tokens.AccessToken, "Speedmaster", "Omega", "310.30")
	other := createWatch(t, r, alice.Tokens.AccessToken, "Seamaster", "Omega", "210.30")

	resp := performRequest(r, http.MethodPatch, "/watches/"+w.ID,
		jsonBody(t, map[string]string{"name": "Speedmaster Pro"}), alice.Tokens.AccessToken, "application/json")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var updated watchResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &updated))
	assert.Equal(t, "Speedmaster Pro", updated.Name)
	assert.Equal(t, "310.30", updated.Reference)

	// reference collision with another watch
	resp = performRequest(r, http.MethodPatch, "/watches/"+w.ID,
		jsonBody(t, map[string]string{"reference": other.Reference}), alice.Tokens.AccessToken, "application/json")
	assert.Equal(t, http.StatusConflict, resp.Code)

	// not the owner
	resp = performRequest(r, http.MethodPatch, "/watches/"+w.ID,
		jsonBody(t, map[string]string{"name": "Stolen"}), bob.Tokens.AccessToken, "application/json")
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// unknown id
	resp = performRequest(r, http.MethodPatch, "/watches/does-not-exist",
		jsonBody(t, map[string]string{"name": "Ghost"}), alice.Tokens.AccessToken, "application/json")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteWatch(t *testing.T) {
	r := newTestServer(t)
	alice := register(t, r, "alice_99", "Abcdef1!")
	w := createWatch(t, r, alice.Tokens.AccessToken, "Explorer", "Rolex", "124270")

	resp := performRequest(r, http.MethodDelete, "/watches/"+w.ID, nil, alice.Tokens.AccessToken, "")
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = performRequest(r, http.MethodDelete, "/watches/"+w.ID, nil, alice.Tokens.AccessToken, "")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestWatchRoutesRequireAuth(t *testing.T) {
	r := newTestServer(t)
	resp := performRequest(r, http.MethodGet, "/watches", nil, "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestUploadAndListPhotos(t *testing.T) {
	r := newTestServer(t)
	alice := register(t, r, "alice_99", "Abcdef1!")
	w := createWatch(t, r, alice.Tokens.AccessToken, "Datejust", "Rolex", "126234")

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="front.jpg"`)
	hdr.Set("Content-Type", "image/jpeg")
	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)
	_, _ = part.Write([]byte("not really a jpeg, but the handler only sniffs the header"))
	require.NoError(t, mw.Close())

	resp := performRequest(r, http.MethodPost, "/watches/"+w.ID+"/photo", buf, alice.Tokens.AccessToken, mw.FormDataContentType())
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = performRequest(r, http.MethodGet, "/watches/"+w.ID+"/photos", nil, alice.Tokens.AccessToken, "")
	require.Equal(t, http.StatusOK, resp.Code)
	var photos []map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &photos))
	require.Len(t, photos, 1)
	assert.Equal(t, "front.jpg", photos[0]["fileName"])
}

func TestUploadPhotoRejectsNonImage(t *testing.T) {
	r := newTestServer(t)
	alice := register(t, r, "alice_99", "Abcdef1!")
	w := createWatch(t, r, alice.Tokens.AccessToken, "GMT", "Rolex", "126710")

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	part, err := mw.CreateFormFile("file", "notes.txt")
	require.NoError(t, err)
	_, _ = part.Write([]byte("text"))
	require.NoError(t, mw.Close())

	resp := performRequest(r, http.MethodPost, "/watches/"+w.ID+"/photo", buf, alice.Tokens.AccessToken, mw.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}
