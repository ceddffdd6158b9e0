// Package server exposes the research pipeline over HTTP: job submission,
// pull-based status and report endpoints, and a per-job websocket stream.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scopify/benchmark-agent/internal/broadcast"
	"github.com/scopify/benchmark-agent/internal/config"
	"github.com/scopify/benchmark-agent/internal/jobstore"
	"github.com/scopify/benchmark-agent/internal/model"
	"github.com/scopify/benchmark-agent/internal/pipeline"
)

// nominalJobSeconds is the rough wall time of a full run, used only to
// derive the estimated_time_remaining hint.
const nominalJobSeconds = 150

// Runner executes one research job. Implemented by pipeline.Pipeline.
type Runner interface {
	Run(ctx context.Context, jobID string, input model.InputContext) error
}

// ReportArchive serves terminal jobs that aged out of the in-memory store.
type ReportArchive interface {
	Get(ctx context.Context, jobID string) (*model.Job, error)
}

// Server holds the HTTP façade's collaborators.
type Server struct {
	cfg     *config.Config
	jobs    *jobstore.Store
	events  *broadcast.Broadcaster
	runner  Runner
	archive ReportArchive
}

// New builds a server. archive may be nil.
func New(cfg *config.Config, jobs *jobstore.Store, events *broadcast.Broadcaster, runner Runner, archive ReportArchive) *Server {
	return &Server{
		cfg:     cfg,
		jobs:    jobs,
		events:  events,
		runner:  runner,
		archive: archive,
	}
}

// Router assembles the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", s.handleHealth)
	r.Post("/research", s.handleSubmit)
	r.Get("/research/{jobID}/status", s.handleStatus)
	r.Get("/research/{jobID}/report", s.handleReport)
	r.Get("/research/ws/{jobID}", s.handleWebSocket)
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// submitRequest is the submission body. Every field is optional; a bare
// startup_data payload is enough to derive the input context.
type submitRequest struct {
	StartupData map[string]any `json:"startup_data"`
	Company     string         `json:"company"`
	CompanyURL  string         `json:"company_url"`
	Industry    string         `json:"industry"`
	HQLocation  string         `json:"hq_location"`
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	input := extractInput(req)
	jobID := uuid.New().String()
	s.jobs.Create(jobID, input.Company, pipeline.TotalSteps())

	zap.L().Info("server: accepted research job",
		zap.String("job_id", jobID),
		zap.String("company", input.Company),
		zap.String("industry", input.Industry),
	)

	// The job runs detached from the request.
	go func() {
		if err := s.runner.Run(context.Background(), jobID, input); err != nil {
			zap.L().Error("server: research job failed",
				zap.String("job_id", jobID),
				zap.Error(err),
			)
		}
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":        "accepted",
		"job_id":        jobID,
		"websocket_url": fmt.Sprintf("/research/ws/%s", jobID),
		"status_url":    fmt.Sprintf("/research/%s/status", jobID),
	})
}

type statusResponse struct {
	JobID                  string    `json:"job_id"`
	Company                string    `json:"company"`
	Status                 string    `json:"status"`
	CurrentStep            string    `json:"current_step"`
	Progress               int       `json:"progress_percentage"`
	StepsCompleted         []string  `json:"steps_completed"`
	TotalSteps             int       `json:"total_steps"`
	Error                  string    `json:"error,omitempty"`
	HasReport              bool      `json:"has_report"`
	EstimatedTimeRemaining string    `json:"estimated_time_remaining,omitempty"`
	CreatedAt              time.Time `json:"created_at"`
	LastUpdate             time.Time `json:"last_update"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookupJob(r.Context(), chi.URLParam(r, "jobID"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "research job not found"})
		return
	}

	resp := statusResponse{
		JobID:          job.ID,
		Company:        job.Company,
		Status:         string(job.Status),
		CurrentStep:    job.CurrentStep,
		Progress:       job.Progress,
		StepsCompleted: job.StepsCompleted,
		TotalSteps:     job.TotalSteps,
		Error:          job.Error,
		HasReport:      job.Report != "",
		CreatedAt:      job.CreatedAt,
		LastUpdate:     job.LastUpdate,
	}
	if job.Status == model.JobStatusProcessing && job.Progress > 0 {
		remaining := nominalJobSeconds * (100 - job.Progress) / 100
		resp.EstimatedTimeRemaining = fmt.Sprintf("%ds", remaining)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookupJob(r.Context(), chi.URLParam(r, "jobID"))
	if !ok || job.Report == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "report not found"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"report":         job.Report,
		"company":        job.Company,
		"status":         string(job.Status),
		"references":     job.References,
		"reference_info": job.ReferenceInfo,
	})
}

// lookupJob checks the live store first and falls back to the archive for
// jobs evicted from memory.
func (s *Server) lookupJob(ctx context.Context, jobID string) (*model.Job, bool) {
	if job, ok := s.jobs.Get(jobID); ok {
		return job, true
	}
	if s.archive == nil {
		return nil, false
	}
	job, err := s.archive.Get(ctx, jobID)
	if err != nil {
		zap.L().Warn("server: archive lookup failed", zap.String("job_id", jobID), zap.Error(err))
		return nil, false
	}
	if job == nil {
		return nil, false
	}
	return job, true
}

// extractInput derives the pipeline input from a submission, preferring the
// structured startup payload and falling back to the flat fields, then to
// the documented defaults.
func extractInput(req submitRequest) model.InputContext {
	var company, companyURL, industry, hq string

	if sd := req.StartupData; len(sd) > 0 {
		if ne, ok := sd["named_entities"].(map[string]any); ok {
			if orgs, ok := ne["organizations"].(map[string]any); ok {
				if info, ok := orgs["company"].(map[string]any); ok {
					company, _ = info["legal_name"].(string)
					if company == "" {
						if brands, ok := info["brand_names"].([]any); ok && len(brands) > 0 {
							company, _ = brands[0].(string)
						}
					}
					companyURL, _ = info["website_url"].(string)
				}
			}
			if locs, ok := ne["locations"].(map[string]any); ok {
				if hqInfo, ok := locs["headquarters"].(map[string]any); ok {
					city, _ := hqInfo["city"].(string)
					country, _ := hqInfo["country"].(string)
					switch {
					case city != "" && country != "":
						hq = city + ", " + country
					case city != "":
						hq = city
					default:
						hq = country
					}
				}
			}
		}
		if biz, ok := sd["business_model_classification"].(map[string]any); ok {
			revenueModel, _ := biz["revenue_model"].(string)
			switch revenueModel {
			case "marketplace":
				industry = "E-commerce"
			default:
				// saas and anything unrecognized both land here.
				industry = "Technology"
			}
		}
	}

	if company == "" {
		company = req.Company
	}
	if company == "" {
		company = "Target Company"
	}
	if companyURL == "" {
		companyURL = req.CompanyURL
	}
	if industry == "" {
		industry = req.Industry
	}
	if industry == "" {
		industry = "Technology"
	}
	if hq == "" {
		hq = req.HQLocation
	}
	if hq == "" {
		hq = "Global"
	}

	return model.InputContext{
		Company:     company,
		CompanyURL:  companyURL,
		Industry:    industry,
		HQLocation:  hq,
		StartupData: req.StartupData,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		zap.L().Warn("server: response encode failed", zap.Error(err))
	}
}
