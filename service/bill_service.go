package service

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/skohli21/utility-bill-analyzer/config"
	"github.com/skohli21/utility-bill-analyzer/dto"
	"github.com/skohli21/utility-bill-analyzer/utils"
)

type BillService struct {
	extractor TextExtractor
	parser    *utils.BillParser
	sessions  *SessionStore
	cfg       *config.Config
	logger    *logrus.Logger
}

func NewBillService(
	extractor TextExtractor,
	parser *utils.BillParser,
	sessions *SessionStore,
	cfg *config.Config,
	logger *logrus.Logger,
) *BillService {
	return &BillService{
		extractor: extractor,
		parser:    parser,
		sessions:  sessions,
		cfg:       cfg,
		logger:    logger,
	}
}

// AnalyzeDocuments runs extraction over every uploaded bill concurrently.
// Extraction is a pure function of the document bytes, so the fan-out needs
// no shared state; the merge into the session collection then happens as a
// single aggregation pass, never incrementally, so anomaly flags are only
// ever computed against the fully merged collection.
func (s *BillService) AnalyzeDocuments(req *dto.AnalyzeRequest) (*dto.AnalyzeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	results := make([]dto.DocumentResult, len(req.Files))
	var wg sync.WaitGroup

	for i, fileHeader := range req.Files {
		wg.Add(1)
		go func(i int, fh *multipart.FileHeader) {
			defer wg.Done()
			results[i] = s.processDocument(fh)
		}(i, fileHeader)
	}
	wg.Wait()

	var parsed []dto.BillRecord
	for i := range results {
		if results[i].Record != nil {
			parsed = append(parsed, *results[i].Record)
		}
	}

	session := s.sessions.GetOrCreate(req.SessionID)

	var records []dto.BillRecord
	var summary dto.SummaryStats
	session.Update(func(coll *utils.BillCollection) {
		coll.InsertAll(parsed)
		records = coll.Records()
		summary = coll.Summary()
	})

	s.logger.Infof("Session %s: analyzed %d documents, %d records total", session.ID, len(req.Files), len(records))

	return &dto.AnalyzeResponse{
		SessionID:   session.ID.String(),
		Documents:   results,
		Records:     records,
		Summary:     summary,
		ProcessedAt: time.Now().Format(time.RFC3339),
	}, nil
}

// processDocument handles one uploaded file end to end: read, extract text,
// parse, validate. A failure here halts processing for this document only.
func (s *BillService) processDocument(fh *multipart.FileHeader) dto.DocumentResult {
	res := dto.DocumentResult{Filename: fh.Filename}

	if fh.Size > s.cfg.MaxFileSize {
		res.Error = fmt.Sprintf("file exceeds size limit of %d bytes", s.cfg.MaxFileSize)
		return res
	}

	f, err := fh.Open()
	if err != nil {
		res.Error = fmt.Sprintf("failed to open file: %v", err)
		return res
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		res.Error = fmt.Sprintf("failed to read file: %v", err)
		return res
	}

	text, err := s.extractor.ExtractText(data)
	if err != nil || strings.TrimSpace(text) == "" {
		// No text at all and a hard extraction error mean the same thing
		// to the user: the document could not be read.
		s.logger.Warnf("Text extraction failed for %s: %v", fh.Filename, err)
		res.Error = dto.ErrTextExtractionFailed.Error()
		return res
	}

	if len(text) > s.cfg.MaxTextBytes {
		s.logger.Warnf("Rejecting %s: extracted text is %d bytes", fh.Filename, len(text))
		res.Error = dto.ErrTextTooLarge.Error()
		return res
	}

	rec := s.parser.Parse(text)
	verdict := utils.ValidateRecord(rec)
	res.Record = &rec
	res.Validation = &verdict
	return res
}

// AnalyzePasted parses pasted tabular rows into the session collection.
// Malformed rows are skipped with per-row warnings; only a batch with zero
// usable rows is an error.
func (s *BillService) AnalyzePasted(req *dto.PasteRequest) (*dto.PasteResponse, error) {
	if len(req.Data) > s.cfg.MaxTextBytes {
		return nil, dto.ErrTextTooLarge
	}

	result, err := utils.ParsePastedRows(req.Data)
	if err != nil {
		return nil, err
	}

	session := s.sessions.GetOrCreate(req.SessionID)

	var records []dto.BillRecord
	var summary dto.SummaryStats
	session.Update(func(coll *utils.BillCollection) {
		coll.InsertAll(result.Records)
		records = coll.Records()
		summary = coll.Summary()
	})

	s.logger.Infof("Session %s: pasted %d rows, %d skipped", session.ID, len(result.Records), len(result.Warnings))

	return &dto.PasteResponse{
		SessionID:   session.ID.String(),
		Inserted:    len(result.Records),
		RowWarnings: result.Warnings,
		Records:     records,
		Summary:     summary,
		ProcessedAt: time.Now().Format(time.RFC3339),
	}, nil
}

// GetCollection snapshots the current state of a session.
func (s *BillService) GetCollection(sessionID string) (*dto.CollectionResponse, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, dto.ErrSessionNotFound
	}

	var records []dto.BillRecord
	var summary dto.SummaryStats
	session.Update(func(coll *utils.BillCollection) {
		records = coll.Records()
		summary = coll.Summary()
	})

	return &dto.CollectionResponse{
		SessionID: session.ID.String(),
		Records:   records,
		Summary:   summary,
	}, nil
}

// EndSession discards a session and its collection.
func (s *BillService) EndSession(sessionID string) bool {
	return s.sessions.Delete(sessionID)
}
