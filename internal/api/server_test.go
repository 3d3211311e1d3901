package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"radverify/internal/analyze"
	"radverify/internal/verify"
)

const testReport = `BPD: 47.0 mm, HC 175.0 mm. The skull is intact.
Stomach and bladder visualized. No calcifications seen.`

func newTestServer() *Server {
	pipeline := verify.NewPipeline(verify.PipelineOptions{
		Detector: analyze.NewRuleBasedDetector(analyze.DefaultOptions(), analyze.NoNoise{}),
	})
	return NewServer(Options{Pipeline: pipeline})
}

func scanUpload(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 200, 200))
	for i := range img.Pix {
		img.Pix[i] = 90
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartRequest builds a /verify request with the given scan payload and
// report text.
func multipartRequest(t *testing.T, filename string, scan []byte, report string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if scan != nil {
		part, err := w.CreateFormFile("scan", filename)
		require.NoError(t, err)
		_, err = part.Write(scan)
		require.NoError(t, err)
	}
	require.NoError(t, w.WriteField("report", report))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/verify", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestVerifyEndpointSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, multipartRequest(t, "scan.png", scanUpload(t), testReport))

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		RequestID string `json:"request_id"`
		Summary   struct {
			AgreementRate float64 `json:"agreement_rate"`
			RiskLevel     string  `json:"risk_level"`
		} `json:"summary"`
		Comparisons []struct {
			Feature string `json:"feature"`
			Status  string `json:"status"`
		} `json:"comparisons"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.NotEmpty(t, result.RequestID)
	assert.NotEmpty(t, result.Comparisons)
	assert.GreaterOrEqual(t, result.Summary.AgreementRate, 0.0)
	assert.LessOrEqual(t, result.Summary.AgreementRate, 1.0)
	assert.NotEmpty(t, result.Summary.RiskLevel)
}

func TestVerifyEndpointMissingScan(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, multipartRequest(t, "scan.png", nil, testReport))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "missing scan")
}

func TestVerifyEndpointInvalidImage(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, multipartRequest(t, "scan.png", []byte("garbage"), testReport))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, verify.StageInput, body["stage"])
}

func TestVerifyEndpointUnsupportedFormat(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, multipartRequest(t, "scan.bmp", scanUpload(t), testReport))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerifyEndpointEmptyReport(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer().Handler().ServeHTTP(rec, multipartRequest(t, "scan.png", scanUpload(t), ""))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, verify.StageInput, body["stage"])
}
