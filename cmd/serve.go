package main

import (
	"context"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/credibility-cli/internal/config"
	"github.com/sells-group/credibility-cli/internal/model"
	"github.com/sells-group/credibility-cli/internal/scorer"
)

const missingFieldsMessage = "Please provide all fields: Company Name, Stock Symbol, and Announcement Text."

// maxBodyBytes caps every request body the API reads.
const maxBodyBytes = 1 << 20

// analyzer scores announcements.
type analyzer interface {
	Analyze(ctx context.Context, a model.Announcement) *model.AnalysisResult
}

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}

		env, err := initScoring(ctx, cfg, "serve")
		if err != nil {
			return err
		}
		defer env.Close()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           buildRouter(cfg.Server, cfg.Scoring.TopTerms, env.Engine, env.Classifier),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// buildRouter wires the API routes and middleware.
func buildRouter(sc config.ServerConfig, topTerms int, az analyzer, p scorer.Predictor) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if sc.RequestTimeoutSecs > 0 {
		r.Use(middleware.Timeout(time.Duration(sc.RequestTimeoutSecs) * time.Second))
	}

	origins := sc.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze", handleAnalyze(az))
		r.Post("/compare", handleCompare(az))
		r.Post("/explain", handleExplain(p, topTerms))
	})

	return r
}

type analyzeRequest struct {
	CompanyName      string `json:"company_name"`
	Symbol           string `json:"symbol"`
	AnnouncementText string `json:"announcement_text"`
}

func (ar analyzeRequest) announcement() model.Announcement {
	return model.Announcement{Text: ar.AnnouncementText, CompanyName: ar.CompanyName, Symbol: ar.Symbol}
}

func handleAnalyze(az analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req analyzeRequest
		if isJSON(r) {
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		} else {
			if err := parseForm(w, r); err != nil {
				writeError(w, http.StatusBadRequest, "invalid form body")
				return
			}
			req = analyzeRequest{
				CompanyName:      r.PostFormValue("company_name"),
				Symbol:           r.PostFormValue("symbol"),
				AnnouncementText: r.PostFormValue("announcement_text"),
			}
		}

		a, err := normalize(req.announcement())
		if err != nil {
			writeError(w, http.StatusBadRequest, missingFieldsMessage)
			return
		}
		writeJSON(w, http.StatusOK, az.Analyze(r.Context(), a))
	}
}

func handleCompare(az analyzer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Left  analyzeRequest `json:"left"`
			Right analyzeRequest `json:"right"`
		}
		if isJSON(r) {
			if err := decodeJSON(w, r, &req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid request body")
				return
			}
		} else {
			if err := parseForm(w, r); err != nil {
				writeError(w, http.StatusBadRequest, "invalid form body")
				return
			}
			for side, dst := range map[string]*analyzeRequest{"left": &req.Left, "right": &req.Right} {
				*dst = analyzeRequest{
					CompanyName:      r.PostFormValue(side + "_company_name"),
					Symbol:           r.PostFormValue(side + "_symbol"),
					AnnouncementText: r.PostFormValue(side + "_announcement_text"),
				}
			}
		}

		left, err := normalize(req.Left.announcement())
		if err != nil {
			writeError(w, http.StatusBadRequest, missingFieldsMessage)
			return
		}
		right, err := normalize(req.Right.announcement())
		if err != nil {
			writeError(w, http.StatusBadRequest, missingFieldsMessage)
			return
		}
		writeJSON(w, http.StatusOK, compareAnnouncements(r.Context(), az, left, right))
	}
}

func handleExplain(p scorer.Predictor, defaultTop int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
			TopK *int   `json:"top_k"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if strings.TrimSpace(req.Text) == "" {
			writeError(w, http.StatusBadRequest, "text is required")
			return
		}
		top := defaultTop
		if req.TopK != nil {
			top = *req.TopK
		}
		writeJSON(w, http.StatusOK, explain(p, req.Text, top))
	}
}

func isJSON(r *http.Request) bool {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return mt == "application/json"
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
}

// parseForm accepts both urlencoded and multipart bodies.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "multipart/form-data" {
		return r.ParseMultipartForm(maxBodyBytes)
	}
	return r.ParseForm()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("serve: encode response failed", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
