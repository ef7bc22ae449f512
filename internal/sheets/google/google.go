// Package google exports sales summaries to a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	applog "possales/internal/log"
	"possales/internal/report"
	ports "possales/internal/sheets"
)

type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *applog.Logger
}

var _ ports.SummaryExporter = (*Exporter)(nil)

// Credentials selects the service account key. JSON wins over File.
type Credentials struct {
	JSON string
	File string
}

// New returns an exporter writing to sheetName in spreadsheetID.
func New(svc *gsheet.Service, spreadsheetID, sheetName string, logger *applog.Logger) (*Exporter, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Sales"
	}
	if logger == nil {
		logger = applog.Wrap(nil, applog.ComponentSheets)
	}
	return &Exporter{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName, logger: logger}, nil
}

// NewService initializes a Sheets Service using Service Account credentials.
// With neither JSON nor File set, GOOGLE_APPLICATION_CREDENTIALS is tried.
func NewService(ctx context.Context, creds Credentials, opts ...goption.ClientOption) (*gsheet.Service, error) {
	credentialsJSON, err := creds.load()
	if err != nil {
		return nil, err
	}

	opts = append([]goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, opts...)
	service, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c Credentials) load() ([]byte, error) {
	inline := strings.TrimSpace(c.JSON)
	file := strings.TrimSpace(c.File)
	if inline == "" && file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	switch {
	case inline != "":
		return []byte(inline), nil
	case file != "":
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		return b, nil
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
}

// NewHTTPClient creates an HTTP client tuned for the Sheets API.
func NewHTTPClient() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{Transport: transport, Timeout: 60 * time.Second}
}

// Export clears the sheet and writes the pivoted summary from A1.
func (e *Exporter) Export(ctx context.Context, s report.Summary) (string, error) {
	if e.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	values := summaryValues(s)
	rng := a1Range(e.sheetName, len(values), len(values[0]))

	clearRange := quoteSheet(e.sheetName)
	if _, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("clear sheet %s: %w", e.sheetName, err)
	}

	vr := &gsheet.ValueRange{Values: values}
	if _, err := e.svc.Spreadsheets.Values.Update(e.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do(); err != nil {
		return "", fmt.Errorf("update %s: %w", rng, err)
	}

	e.logger.InfoContext(ctx, "Exported summary to sheet",
		"spreadsheet_id", e.spreadsheetID,
		"range", rng,
		applog.FieldRecords, len(values)-1)
	return rng, nil
}
