package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	appanalysis "github.com/bryanwahyu/uxinsight-gateway/internal/application/analysis"
	appquestions "github.com/bryanwahyu/uxinsight-gateway/internal/application/questions"
	appvision "github.com/bryanwahyu/uxinsight-gateway/internal/application/vision"
	domanalysis "github.com/bryanwahyu/uxinsight-gateway/internal/domain/analysis"
	domllm "github.com/bryanwahyu/uxinsight-gateway/internal/domain/llm"
	domquestions "github.com/bryanwahyu/uxinsight-gateway/internal/domain/questions"
	domvision "github.com/bryanwahyu/uxinsight-gateway/internal/domain/vision"
	"github.com/bryanwahyu/uxinsight-gateway/internal/middleware"
)

// maxUploadBytes batas parse multipart di memory
const maxUploadBytes = 32 << 20

type Router struct {
	questionsSvc *appquestions.Service
	visionSvc    *appvision.Service
	analysisSvc  *appanalysis.Service
}

func NewRouter(questionsSvc *appquestions.Service, visionSvc *appvision.Service, analysisSvc *appanalysis.Service) http.Handler {
	r := &Router{questionsSvc: questionsSvc, visionSvc: visionSvc, analysisSvc: analysisSvc}
	mux := chi.NewRouter()

	mux.Route("/api", func(rt chi.Router) {
		rt.Post("/questions", r.wrap(r.handleSubmitQuestion))
		rt.Post("/questions/test-upload", r.wrap(r.handleTestUpload))
		rt.Get("/questions/dashboard/stats", r.wrap(r.handleDashboardStats))
		rt.Delete("/questions/{id}", r.wrap(r.handleDeleteQuestion))
		rt.Post("/questions/vision/analyze", r.wrap(r.handleVisionAnalyze))
		rt.Post("/questions/premium-auto/analyze", r.wrap(r.handlePremiumAutoAnalyze))
		rt.Post("/llm/query", r.wrap(r.handleLLMQuery))
		rt.Get("/analyses/recent", r.wrap(r.handleRecentAnalyses))
		rt.Get("/analyses/{token}", r.wrap(r.handleGetAnalysis))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// badRequestError adalah input validation error: dilaporkan sebagai 400,
// tidak pernah dianggap server failure
type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

func badRequest(msg string) error { return &badRequestError{msg: msg} }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			var br *badRequestError
			if errors.As(err, &br) {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": br.msg})
				return
			}
			if errors.Is(err, domvision.ErrNoImage) {
				writeJSON(w, http.StatusBadRequest, map[string]any{"error": domvision.ErrNoImage.Error()})
				return
			}
			if errors.Is(err, sql.ErrNoRows) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			var re *appanalysis.RunError
			if errors.As(err, &re) {
				writeJSON(w, http.StatusInternalServerError, map[string]any{
					"error":   appanalysis.GenericErrorMessage,
					"details": re.Err.Error(),
				})
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeJSONErr(w http.ResponseWriter, status int, body any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(body)
}

// readFileParts baca semua file part ke memory.
// Satu part yang gagal dibaca dilewati, sisanya tetap diproses.
func readFileParts(headers []*multipart.FileHeader) []appquestions.UploadedFile {
	var files []appquestions.UploadedFile
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			continue
		}
		files = append(files, appquestions.UploadedFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}
	return files
}

// POST /api/questions (multipart: title, attachments, visionAnalysis)
func (r *Router) handleSubmitQuestion(w http.ResponseWriter, req *http.Request) error {
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		return badRequest(fmt.Sprintf("invalid multipart form: %v", err))
	}

	title := strings.TrimSpace(req.FormValue("title"))
	if title == "" {
		return badRequest("title is required")
	}

	var files []appquestions.UploadedFile
	if req.MultipartForm != nil {
		files = readFileParts(req.MultipartForm.File["attachments"])
	}

	res, err := r.questionsSvc.Submit(req.Context(), appquestions.SubmitCommand{
		Title:          title,
		Attachments:    files,
		VisionAnalysis: req.FormValue("visionAnalysis"),
	})
	if err != nil {
		return err
	}
	middleware.IncrementSubmissions()

	if res.Degraded {
		middleware.IncrementSubmissionsDegraded()
		w.WriteHeader(http.StatusOK)
		_, werr := w.Write([]byte(res.Message))
		return werr
	}

	// relay body downstream apa adanya
	w.Header().Set("Content-Type", "application/json")
	_, werr := w.Write(res.Body)
	return werr
}

// POST /api/questions/test-upload — debug echo untuk multipart
func (r *Router) handleTestUpload(w http.ResponseWriter, req *http.Request) error {
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		return badRequest(fmt.Sprintf("invalid multipart form: %v", err))
	}
	count := 0
	if req.MultipartForm != nil {
		count = len(req.MultipartForm.File["attachments"])
	}
	return writeJSONErr(w, http.StatusOK, map[string]any{
		"title":       req.FormValue("title"),
		"attachments": count,
	})
}

// GET /api/questions/dashboard/stats
func (r *Router) handleDashboardStats(w http.ResponseWriter, req *http.Request) error {
	stats, err := r.questionsSvc.Dashboard(req.Context(), 5)
	if err != nil {
		return err
	}
	return writeJSONErr(w, http.StatusOK, stats)
}

// DELETE /api/questions/{id}
func (r *Router) handleDeleteQuestion(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "id")
	if id == "" {
		return badRequest("id is required")
	}
	if err := r.questionsSvc.Delete(req.Context(), domquestions.QuestionID(id)); err != nil {
		return err
	}
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// POST /api/questions/vision/analyze (multipart: attachments)
func (r *Router) handleVisionAnalyze(w http.ResponseWriter, req *http.Request) error {
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		return badRequest(fmt.Sprintf("invalid multipart form: %v", err))
	}

	var files []appvision.File
	if req.MultipartForm != nil {
		for _, p := range readFileParts(req.MultipartForm.File["attachments"]) {
			files = append(files, appvision.File{Filename: p.Filename, ContentType: p.ContentType, Data: p.Data})
		}
	}

	middleware.IncrementVisionCalls()
	merged, err := r.visionSvc.Analyze(req.Context(), files)
	if err != nil {
		return err
	}
	return writeJSONErr(w, http.StatusOK, merged)
}

// POST /api/questions/premium-auto/analyze
// Body: {"url": "<target>", "mode": "live"?}
func (r *Router) handlePremiumAutoAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		URL  string `json:"url"`
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return badRequest(fmt.Sprintf("invalid request body: %v", err))
	}
	if strings.TrimSpace(body.URL) == "" {
		return badRequest("URL is required")
	}

	middleware.IncrementAnalyses()
	envelope, err := r.analysisSvc.Run(req.Context(), appanalysis.RunCommand{
		URL:  strings.TrimSpace(body.URL),
		Live: body.Mode == "live",
	})
	if err != nil {
		middleware.IncrementAnalysesFailed()
		return err
	}
	return writeJSONErr(w, http.StatusOK, envelope)
}

// POST /api/llm/query — pass-through ke LLM backend, tetap dicatat sebagai question
func (r *Router) handleLLMQuery(w http.ResponseWriter, req *http.Request) error {
	var payload domllm.QueryPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		return badRequest(fmt.Sprintf("invalid request body: %v", err))
	}
	if strings.TrimSpace(payload.Question) == "" {
		return badRequest("question is required")
	}

	res, err := r.questionsSvc.DirectQuery(req.Context(), payload)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	_, werr := w.Write(res.Raw)
	return werr
}

// GET /api/analyses/recent?limit=10
func (r *Router) handleRecentAnalyses(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))
	list, err := r.analysisSvc.Recent(req.Context(), limit)
	if err != nil {
		return err
	}
	return writeJSONErr(w, http.StatusOK, list)
}

// GET /api/analyses/{token}
func (r *Router) handleGetAnalysis(w http.ResponseWriter, req *http.Request) error {
	token := chi.URLParam(req, "token")
	a, err := r.analysisSvc.Get(req.Context(), domanalysis.Token(token))
	if err != nil {
		return err
	}
	return writeJSONErr(w, http.StatusOK, a)
}
