//go:build e2e

package e2e

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestE2E_UserBootstrap tests user registration idempotency
func TestE2E_UserBootstrap(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	resp, err := env.Post("/api/users/get-or-create", map[string]string{
		"email": "student@example.com",
		"name":  "Student",
	}, "")
	require.NoError(t, err)

	var user struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &user))
	require.NotEmpty(t, user.ID)
	assert.Equal(t, "student@example.com", user.Email)

	// Same email must resolve to the same user.
	resp2, err := env.Post("/api/users/get-or-create", map[string]string{
		"email": "student@example.com",
	}, "")
	require.NoError(t, err)

	var user2 struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp2.Data, &user2))
	assert.Equal(t, user.ID, user2.ID)
}

// TestE2E_SubjectLifecycle tests subject CRUD and per-user isolation
func TestE2E_SubjectLifecycle(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.Bootstrap()

	// Requests without identity are rejected.
	_, err := env.Get("/api/subjects", "")
	require.Error(t, err)

	resp, err := env.Post("/api/subjects", map[string]string{"name": "Biology"}, env.UserID)
	require.NoError(t, err)

	var subject struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &subject))
	assert.Equal(t, "Biology", subject.Name)

	listResp, err := env.Get("/api/subjects", env.UserID)
	require.NoError(t, err)

	var subjects []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal(listResp.Data, &subjects))
	require.Len(t, subjects, 1)

	_, err = env.Patch("/api/subjects/"+subject.ID, map[string]string{"name": "Cell Biology"}, env.UserID)
	require.NoError(t, err)

	listResp, err = env.Get("/api/subjects", env.UserID)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(listResp.Data, &subjects))
	assert.Equal(t, "Cell Biology", subjects[0].Name)

	// A second user cannot see or touch the first user's subject.
	otherResp, err := env.Post("/api/users/get-or-create", map[string]string{
		"email": "other@example.com",
	}, "")
	require.NoError(t, err)

	var other struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(otherResp.Data, &other))

	otherList, err := env.Get("/api/subjects", other.ID)
	require.NoError(t, err)

	var otherSubjects []json.RawMessage
	require.NoError(t, json.Unmarshal(otherList.Data, &otherSubjects))
	assert.Empty(t, otherSubjects)

	_, err = env.Delete("/api/subjects/"+subject.ID, other.ID)
	assert.Error(t, err, "delete of another user's subject should fail")

	_, err = env.Delete("/api/subjects/"+subject.ID, env.UserID)
	require.NoError(t, err)
}

// TestE2E_UploadAndDocuments tests the upload pipeline and document CRUD
func TestE2E_UploadAndDocuments(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.Bootstrap()

	subjectID := createSubject(t, env, "Biology")

	listResp, err := env.Get("/api/documents?subject_id="+subjectID, env.UserID)
	require.NoError(t, err)

	var docList struct {
		Items   []json.RawMessage `json:"items"`
		HasMore bool              `json:"has_more"`
	}
	require.NoError(t, json.Unmarshal(listResp.Data, &docList))
	assert.Empty(t, docList.Items)

	// Non-PDF uploads are rejected before ingestion starts.
	_, err = env.UploadPDF("notes.txt", subjectID, []byte("plain text"), env.UserID)
	require.Error(t, err)

	uploadResp, err := env.UploadPDF("mitochondria.pdf", subjectID, []byte("%PDF-1.4 stub"), env.UserID)
	require.NoError(t, err)

	var upload struct {
		DocumentID string `json:"document_id"`
		Title      string `json:"title"`
		ChunkCount int    `json:"chunk_count"`
	}
	require.NoError(t, json.Unmarshal(uploadResp.Data, &upload))
	assert.Equal(t, "mitochondria", upload.Title)
	require.Greater(t, upload.ChunkCount, 0)

	var chunkRows int
	require.NoError(t, env.Pool.QueryRow(env.Ctx,
		"SELECT COUNT(*) FROM chunks WHERE document_id = $1", upload.DocumentID).Scan(&chunkRows))
	assert.Equal(t, upload.ChunkCount, chunkRows)

	listResp, err = env.Get("/api/documents?subject_id="+subjectID, env.UserID)
	require.NoError(t, err)

	var docList2 struct {
		Items []struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(listResp.Data, &docList2))
	require.Len(t, docList2.Items, 1)
	assert.Equal(t, upload.DocumentID, docList2.Items[0].ID)

	_, err = env.Delete("/api/documents/"+upload.DocumentID, env.UserID)
	require.NoError(t, err)

	require.NoError(t, env.Pool.QueryRow(env.Ctx,
		"SELECT COUNT(*) FROM chunks WHERE document_id = $1", upload.DocumentID).Scan(&chunkRows))
	assert.Equal(t, 0, chunkRows, "chunks should cascade on document delete")
}

// TestE2E_DocumentPagination tests cursor paging through the document list
func TestE2E_DocumentPagination(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.Bootstrap()

	subjectID := createSubject(t, env, "History")

	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("notes-%d.pdf", i)
		_, err := env.UploadPDF(name, subjectID, []byte("%PDF-1.4 stub"), env.UserID)
		require.NoError(t, err)
	}

	resp, err := env.Get("/api/documents?subject_id="+subjectID+"&limit=2", env.UserID)
	require.NoError(t, err)

	var page struct {
		Items   []json.RawMessage `json:"items"`
		Cursor  string            `json:"cursor"`
		HasMore bool              `json:"has_more"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	require.Len(t, page.Items, 2)
	require.True(t, page.HasMore)
	require.NotEmpty(t, page.Cursor)

	resp, err = env.Get("/api/documents?subject_id="+subjectID+"&limit=2&cursor="+page.Cursor, env.UserID)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	assert.Len(t, page.Items, 1)
	assert.False(t, page.HasMore)
}

// TestE2E_ChatFlow tests the gated answer pipeline end to end
func TestE2E_ChatFlow(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.Bootstrap()

	subjectID := createSubject(t, env, "Biology")

	// No documents yet: the gate answers without calling the model.
	resp, err := env.Post("/api/chat", map[string]string{
		"question":   "What do mitochondria do?",
		"subject_id": subjectID,
	}, env.UserID)
	require.NoError(t, err)

	var chat struct {
		Answer          string            `json:"answer"`
		RetrievedChunks []json.RawMessage `json:"retrievedChunks"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &chat))
	assert.Contains(t, chat.Answer, "couldn't find any relevant information")
	assert.Empty(t, chat.RetrievedChunks)

	_, err = env.UploadPDF("mitochondria.pdf", subjectID, []byte("%PDF-1.4 stub"), env.UserID)
	require.NoError(t, err)

	resp, err = env.Post("/api/chat", map[string]string{
		"question":   "What do mitochondria do?",
		"subject_id": subjectID,
	}, env.UserID)
	require.NoError(t, err)

	var answered struct {
		Answer          string `json:"answer"`
		RetrievedChunks []struct {
			ID         string  `json:"id"`
			Content    string  `json:"content"`
			Similarity float64 `json:"similarity"`
		} `json:"retrievedChunks"`
		TokensUsed *struct {
			Total int `json:"total"`
		} `json:"tokensUsed"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &answered))
	require.NotEmpty(t, answered.Answer)
	require.NotEmpty(t, answered.RetrievedChunks)

	for _, c := range answered.RetrievedChunks {
		assert.InDelta(t, 1.0, c.Similarity, 0.01, "stub embedder yields identical vectors")
		assert.NotEmpty(t, c.Content)
	}
	require.NotNil(t, answered.TokensUsed)
	assert.Greater(t, answered.TokensUsed.Total, 0)

	// Missing fields are rejected.
	_, err = env.Post("/api/chat", map[string]string{"question": "hi"}, env.UserID)
	assert.Error(t, err)
	_, err = env.Post("/api/chat", map[string]string{"subject_id": subjectID}, env.UserID)
	assert.Error(t, err)
}

// TestE2E_Dashboard tests the activity-derived stats and feed
func TestE2E_Dashboard(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.Bootstrap()

	subjectID := createSubject(t, env, "Biology")

	_, err := env.UploadPDF("notes.pdf", subjectID, []byte("%PDF-1.4 stub"), env.UserID)
	require.NoError(t, err)

	_, err = env.Post("/api/chat", map[string]string{
		"question":   "What is ATP?",
		"subject_id": subjectID,
	}, env.UserID)
	require.NoError(t, err)

	// Activity is recorded asynchronously; poll until the counters settle.
	var stats struct {
		Subjects  int `json:"subjects"`
		Documents int `json:"documents"`
		Queries   int `json:"queries"`
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := env.Get("/api/dashboard/stats", env.UserID)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(resp.Data, &stats))
		if stats.Queries >= 1 {
			break
		}
		time.Sleep(200 * time.Millisecond)
	}
	assert.Equal(t, 1, stats.Subjects)
	assert.Equal(t, 1, stats.Documents)
	assert.Equal(t, 1, stats.Queries)

	resp, err := env.Get("/api/dashboard/activity?limit=10", env.UserID)
	require.NoError(t, err)

	var activity []struct {
		ActionType string `json:"action_type"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &activity))

	seen := map[string]bool{}
	for _, a := range activity {
		seen[a.ActionType] = true
	}
	for _, want := range []string{"create_subject", "upload_document", "chat_query"} {
		assert.True(t, seen[want], "expected %s in recent activity", want)
	}
}

// TestE2E_CLIWorkflow tests the kortex CLI against the running server
func TestE2E_CLIWorkflow(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()
	env.Bootstrap()

	kortexPath, _ := BuildBinaries(t)

	output, err := env.RunKortex(kortexPath, "subjects", "create", "Chemistry")
	require.NoError(t, err, "subjects create output:\n%s", output)

	output, err = env.RunKortex(kortexPath, "subjects", "list", "--output")
	require.NoError(t, err, "subjects list output:\n%s", output)

	var subjects []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &subjects), "output:\n%s", output)
	require.Len(t, subjects, 1)
	assert.Equal(t, "Chemistry", subjects[0].Name)

	output, err = env.RunKortex(kortexPath, "ask", "What", "is", "a", "mole?", "--subject", subjects[0].ID)
	require.NoError(t, err, "ask output:\n%s", output)
	assert.True(t, strings.Contains(output, "couldn't find any relevant information"),
		"expected the no-results answer, got:\n%s", output)

	output, err = env.RunKortex(kortexPath, "stats", "--output")
	require.NoError(t, err, "stats output:\n%s", output)

	var stats struct {
		Subjects int `json:"subjects"`
	}
	require.NoError(t, json.Unmarshal([]byte(output), &stats), "output:\n%s", output)
	assert.Equal(t, 1, stats.Subjects)
}

func createSubject(t *testing.T, env *E2ETestEnv, name string) string {
	t.Helper()
	resp, err := env.Post("/api/subjects", map[string]string{"name": name}, env.UserID)
	require.NoError(t, err)

	var subject struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &subject))
	return subject.ID
}
