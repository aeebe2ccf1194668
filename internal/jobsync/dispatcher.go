package jobsync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/socialharvester/harvester/internal/api"
)

// Dispatcher validates and sends job commands, then resynchronizes the
// Synchronizer with the server's authoritative state.
type Dispatcher struct {
	client   api.Client
	sync     *Synchronizer
	sink     Sink
	validate *validator.Validate
}

// NewDispatcher creates a dispatcher driving sync.
func NewDispatcher(client api.Client, sync *Synchronizer, sink Sink) *Dispatcher {
	return &Dispatcher{
		client:   client,
		sync:     sync,
		sink:     sink,
		validate: newValidator(),
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("scrapenetwork", func(fl validator.FieldLevel) bool {
		_, ok := CanonicalNetwork(fl.Field().String())
		return ok
	})
	if err != nil {
		panic(fmt.Sprintf("registering scrapenetwork validation: %v", err))
	}
	return v
}

// startInput mirrors api.StartRequest with the local validation rules.
type startInput struct {
	Query    string   `validate:"required"`
	MaxPosts int      `validate:"gt=0"`
	Networks []string `validate:"min=1,dive,scrapenetwork"`
}

type analyzeInput struct {
	Request  string   `validate:"required"`
	Networks []string `validate:"min=1"`
}

// ValidateStart normalizes and checks a start command without sending it.
func (d *Dispatcher) ValidateStart(req api.StartRequest) (api.StartRequest, error) {
	in := startInput{
		Query:    strings.TrimSpace(req.Query),
		MaxPosts: req.MaxPosts,
		Networks: req.Networks,
	}
	if err := d.validate.Struct(in); err != nil {
		return api.StartRequest{}, fromValidator(err)
	}

	networks := make([]string, 0, len(in.Networks))
	for _, n := range in.Networks {
		canonical, _ := CanonicalNetwork(n)
		networks = append(networks, canonical)
	}

	return api.StartRequest{Query: in.Query, MaxPosts: in.MaxPosts, Networks: networks}, nil
}

// ValidateAnalyze normalizes and checks an analysis command without sending
// it. An empty network list selects every network analysis supports.
func (d *Dispatcher) ValidateAnalyze(request string, networks []string) (api.AnalyzeRequest, error) {
	in := analyzeInput{Request: strings.TrimSpace(request)}
	if len(networks) == 0 {
		in.Networks = append([]string(nil), LLMNetworks...)
	} else {
		in.Networks = FilterLLMNetworks(networks)
	}

	if err := d.validate.Struct(in); err != nil {
		vErr := fromValidator(err)
		if IsValidationError(vErr) && vErr.(*ValidationError).Field == "Networks" {
			return api.AnalyzeRequest{}, &ValidationError{
				Field:   "Networks",
				Message: fmt.Sprintf("None of the selected networks support analysis (choose from %s)", strings.Join(LLMNetworks, ", ")),
			}
		}
		return api.AnalyzeRequest{}, vErr
	}

	return api.AnalyzeRequest{Request: in.Request, Networks: in.Networks}, nil
}

// Start validates and sends a start command. On acceptance the status is
// fetched once and status polling begins.
func (d *Dispatcher) Start(ctx context.Context, req api.StartRequest) error {
	req, err := d.ValidateStart(req)
	if err != nil {
		return err
	}

	d.sync.beginCommand(PhaseStarting)

	resp, err := d.client.StartScrape(ctx, req)
	if err != nil {
		d.sync.endCommand(PhaseIdle)
		d.sink.ShowError(api.DetailOr(err, "Could not start scraping"))
		return fmt.Errorf("failed to start scraping: %w", err)
	}

	slog.Info("Scrape started", "query", req.Query, "networks", resp.Networks)
	d.sync.endCommand(PhaseRunning)
	d.sink.ShowNotice("Scraping started: " + strings.Join(resp.Networks, ", "))

	d.sync.StartStatusPolling(ctx)
	d.sync.FetchStatus(ctx)
	d.sync.RefreshRequests(ctx)
	return nil
}

// Stop sends a stop command and resynchronizes whatever the outcome.
func (d *Dispatcher) Stop(ctx context.Context) error {
	previous := d.sync.Phase()
	d.sync.beginCommand(PhaseStopping)

	_, err := d.client.StopScrape(ctx)
	if err != nil {
		d.sync.endCommand(previous)
		d.sink.ShowError(api.DetailOr(err, "Could not stop scraping"))
	} else {
		// Stays Stopping until a status confirms the job ended
		d.sync.endCommand("")
		slog.Info("Scrape stop requested")
	}

	d.sync.FetchStatus(ctx)

	if err != nil {
		return fmt.Errorf("failed to stop scraping: %w", err)
	}
	return nil
}

// AnalyzeLLM validates and sends an analysis command. On acceptance the busy
// indicator is shown and report polling begins.
func (d *Dispatcher) AnalyzeLLM(ctx context.Context, request string, networks []string) error {
	req, err := d.ValidateAnalyze(request, networks)
	if err != nil {
		return err
	}

	resp, err := d.client.AnalyzeLLM(ctx, req)
	if err != nil {
		d.sink.ShowError(api.DetailOr(err, "Could not start the analysis"))
		return fmt.Errorf("failed to start analysis: %w", err)
	}

	slog.Info("Analysis started", "request", req.Request, "networks", resp.Networks)
	if resp.Message != "" {
		d.sink.ShowNotice(resp.Message)
	}

	d.sync.analysisAccepted(ctx)
	d.sync.FetchStatus(ctx)
	return nil
}
