package emissions

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cloudcostchefs/GreenOps/pkg/models/api"
	"github.com/cloudcostchefs/GreenOps/pkg/models/domain"
	"github.com/cloudcostchefs/GreenOps/pkg/services/directory"
	"github.com/cloudcostchefs/GreenOps/pkg/services/pipeline"
)

// Runner is the slice of the pipeline the handler consumes.
type Runner interface {
	Run(ctx context.Context, opts pipeline.Options) (*pipeline.Result, error)
}

type emissionsResponse struct {
	Summary  api.Summary         `json:"summary"`
	Accounts []api.AccountStatus `json:"accounts"`
	Records  []api.CarbonRecord  `json:"records"`
}

type Handler struct {
	runner    Runner
	directory directory.Explorer
}

func NewHandler(runner Runner, dir directory.Explorer) *Handler {
	return &Handler{runner: runner, directory: dir}
}

// GetEmissions runs the retrieval pipeline for the query parameters:
// reportType, start, end, subscriptions (comma separated, empty = all),
// fullDataset, includeDisabled.
func (h *Handler) GetEmissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)
	query := r.URL.Query()

	rt, err := domain.ParseReportType(query.Get("reportType"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	opts := pipeline.Options{
		DateRange:       domain.DateRange{Start: query.Get("start"), End: query.Get("end")},
		ReportType:      rt,
		FullDataset:     query.Get("fullDataset") == "true",
		IncludeDisabled: query.Get("includeDisabled") == "true",
		MaxConcurrency:  1,
	}
	if subs := query.Get("subscriptions"); subs != "" {
		opts.AccountIDs = strings.Split(subs, ",")
	} else {
		opts.AllAccounts = true
	}

	result, err := h.runner.Run(ctx, opts)
	if err != nil {
		logger.Error().Err(err).Msg("pipeline run failed")
		writeError(w, http.StatusBadGateway, err)
		return
	}

	response := emissionsResponse{
		Summary: api.FromSummaryStats(result.Stats),
		Records: make([]api.CarbonRecord, 0, len(result.Records)),
	}
	for _, account := range result.Accounts {
		response.Accounts = append(response.Accounts, api.FromAccountResult(account))
	}
	for _, record := range result.Records {
		response.Records = append(response.Records, api.FromCarbonRecord(record))
	}

	writeJSON(ctx, w, response)
}

// ListAccounts returns the subscriptions reachable by the credential.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accounts, err := h.directory.List(ctx, r.URL.Query().Get("includeDisabled") == "true")
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}

	response := make([]api.AccountStatus, 0, len(accounts))
	for _, account := range accounts {
		response = append(response, api.FromAccountResult(domain.AccountResult{Account: account}))
	}

	writeJSON(ctx, w, response)
}

func writeJSON(ctx context.Context, w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
