package capability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCaptionDataURL(t *testing.T) {
	url := CaptionDataURL("image/jpeg", []byte("abc"))
	require.True(t, strings.HasPrefix(url, "data:image/jpeg;base64,"))
}

func TestSceneExtractionClientExtract(t *testing.T) {
	var gotAuth string
	var gotBody sceneExtractionRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		_ = json.NewEncoder(w).Encode(sceneExtractionResponse{
			Scenes: []struct {
				Start       float64                `json:"start"`
				End         float64                `json:"end"`
				Description string                 `json:"description"`
				Metadata    map[string]interface{} `json:"metadata,omitempty"`
			}{
				{Start: 0, End: 5, Description: "intro"},
				{Start: 5, End: 12, Description: "main"},
			},
		})
	}))
	defer server.Close()

	client := NewSceneExtractionClient(server.URL, "test-key")
	scenes, err := client.Extract(context.Background(), "handle-1", "shot", "find scenes", nil)
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	require.Equal(t, "intro", scenes[0].Description)
	require.Equal(t, "Bearer test-key", gotAuth)
	require.Equal(t, "handle-1", gotBody.VideoHandle)
}
