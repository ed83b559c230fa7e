package service

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skohli21/utility-bill-analyzer/config"
	"github.com/skohli21/utility-bill-analyzer/dto"
	"github.com/skohli21/utility-bill-analyzer/utils"
)

// fakeExtractor returns canned text keyed by filename.
type fakeExtractor struct {
	texts map[string]string
	err   error
}

func (f *fakeExtractor) ExtractText(data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.texts[string(data)], nil
}

func testConfig() *config.Config {
	return &config.Config{
		MaxFileSize:  10 * 1024 * 1024,
		MaxTextBytes: 1024 * 1024,
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func newTestService(t *testing.T, extractor TextExtractor) *BillService {
	profile, ok := config.FindProfile(config.DefaultProfiles(), "electric")
	require.True(t, ok)
	parser, err := utils.NewBillParser(profile)
	require.NoError(t, err)

	logger := testLogger()
	return NewBillService(extractor, parser, NewSessionStore(time.Hour, logger), testConfig(), logger)
}

// fileHeaders builds real multipart file headers whose content is the key
// the fake extractor resolves.
func fileHeaders(t *testing.T, names ...string) []*multipart.FileHeader {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, name := range names {
		fw, err := w.CreateFormFile("files[]", name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(name))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["files[]"]
}

func TestAnalyzeDocuments(t *testing.T) {
	extractor := &fakeExtractor{texts: map[string]string{
		"april.pdf": "Billing Period: 04/01/2023 - 04/30/2023\nTotal Usage: 600 kWh\nTotal Cost: $120.00",
		"march.pdf": "Billing Period: 03/01/2023 - 03/31/2023\nTotal Usage: 500 kWh\nTotal Cost: $100.00",
	}}
	s := newTestService(t, extractor)

	resp, err := s.AnalyzeDocuments(&dto.AnalyzeRequest{Files: fileHeaders(t, "april.pdf", "march.pdf")})
	require.NoError(t, err)

	require.Len(t, resp.Documents, 2)
	assert.Equal(t, "april.pdf", resp.Documents[0].Filename)
	require.NotNil(t, resp.Documents[0].Validation)
	assert.True(t, resp.Documents[0].Validation.OK)

	// Collection comes back in billing-period order regardless of upload order.
	require.Len(t, resp.Records, 2)
	assert.Equal(t, 500.0, *resp.Records[0].TotalUsage)
	assert.Equal(t, 600.0, *resp.Records[1].TotalUsage)

	require.NotNil(t, resp.Summary.TotalUsage)
	assert.Equal(t, 1100.0, *resp.Summary.TotalUsage)
}

func TestAnalyzeDocumentsSessionAccumulates(t *testing.T) {
	extractor := &fakeExtractor{texts: map[string]string{
		"a.pdf": "Total Usage: 100 kWh\nTotal Cost: $20.00",
		"b.pdf": "Total Usage: 200 kWh\nTotal Cost: $40.00",
	}}
	s := newTestService(t, extractor)

	first, err := s.AnalyzeDocuments(&dto.AnalyzeRequest{Files: fileHeaders(t, "a.pdf")})
	require.NoError(t, err)
	assert.Len(t, first.Records, 1)

	second, err := s.AnalyzeDocuments(&dto.AnalyzeRequest{
		Files:     fileHeaders(t, "b.pdf"),
		SessionID: first.SessionID,
	})
	require.NoError(t, err)
	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Len(t, second.Records, 2)
}

func TestAnalyzeDocumentsExtractionFailureHaltsThatDocumentOnly(t *testing.T) {
	extractor := &fakeExtractor{texts: map[string]string{
		"good.pdf": "Total Usage: 100 kWh\nTotal Cost: $20.00",
		"bad.pdf":  "",
	}}
	s := newTestService(t, extractor)

	resp, err := s.AnalyzeDocuments(&dto.AnalyzeRequest{Files: fileHeaders(t, "good.pdf", "bad.pdf")})
	require.NoError(t, err)

	require.Len(t, resp.Documents, 2)
	assert.Empty(t, resp.Documents[0].Error)
	// Empty extracted text reads the same as a hard extraction failure.
	assert.Equal(t, dto.ErrTextExtractionFailed.Error(), resp.Documents[1].Error)
	assert.Nil(t, resp.Documents[1].Record)

	assert.Len(t, resp.Records, 1)
}

func TestAnalyzeDocumentsInsertsPartialRecords(t *testing.T) {
	extractor := &fakeExtractor{texts: map[string]string{
		"partial.pdf": "Account Number: ACCT-1\nSome unstructured remittance text",
	}}
	s := newTestService(t, extractor)

	resp, err := s.AnalyzeDocuments(&dto.AnalyzeRequest{Files: fileHeaders(t, "partial.pdf")})
	require.NoError(t, err)

	// The record still lands in the collection; the verdict tells the
	// caller it is missing the mandatory fields.
	require.Len(t, resp.Records, 1)
	require.NotNil(t, resp.Documents[0].Validation)
	assert.False(t, resp.Documents[0].Validation.OK)
	assert.Equal(t, []string{dto.FieldTotalUsage, dto.FieldTotalCost}, resp.Documents[0].Validation.MissingFields)
}

func TestAnalyzeDocumentsRejectsOversizedText(t *testing.T) {
	extractor := &fakeExtractor{texts: map[string]string{
		"huge.pdf": "Total Usage: 1 kWh " + string(bytes.Repeat([]byte("x"), 2048)),
	}}
	s := newTestService(t, extractor)
	s.cfg.MaxTextBytes = 1024

	resp, err := s.AnalyzeDocuments(&dto.AnalyzeRequest{Files: fileHeaders(t, "huge.pdf")})
	require.NoError(t, err)
	assert.Equal(t, dto.ErrTextTooLarge.Error(), resp.Documents[0].Error)
	assert.Empty(t, resp.Records)
}

func TestAnalyzePasted(t *testing.T) {
	s := newTestService(t, &fakeExtractor{})

	resp, err := s.AnalyzePasted(&dto.PasteRequest{
		Data: "4/10/2023,5/9/2023,29,672490,134973,0.2007\nshort,row",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Inserted)
	require.Len(t, resp.RowWarnings, 1)
	assert.Equal(t, 2, resp.RowWarnings[0].Row)
	require.Len(t, resp.Records, 1)
	require.NotNil(t, resp.Records[0].BlendedRate)
	assert.InDelta(t, 0.2007, *resp.Records[0].BlendedRate, 0.0001)
}

func TestAnalyzePastedNoUsableRows(t *testing.T) {
	s := newTestService(t, &fakeExtractor{})

	_, err := s.AnalyzePasted(&dto.PasteRequest{Data: "not,enough\ncolumns"})
	assert.ErrorIs(t, err, dto.ErrNoUsableRows)
}

func TestGetCollectionUnknownSession(t *testing.T) {
	s := newTestService(t, &fakeExtractor{})

	_, err := s.GetCollection("no-such-session")
	assert.ErrorIs(t, err, dto.ErrSessionNotFound)
}
