package services

import (
  "context"
  "strings"
  "testing"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/apperr"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
)

func TestValidateUpload(t *testing.T) {
  as := NewAnalyzerService(logger.NewNop())

  if err := as.ValidateUpload("report.csv", 1024); err != nil {
    t.Errorf("expected csv upload to validate, got %v", err)
  }
  if err := as.ValidateUpload("Report.XLSX", 1024); err != nil {
    t.Errorf("expected uppercase extension to validate, got %v", err)
  }
  if err := as.ValidateUpload("setup.exe", 1024); err == nil {
    t.Error("expected .exe upload to be rejected")
  } else if apperr.KindOf(err) != apperr.KindValidation {
    t.Errorf("expected validation error, got kind %v", apperr.KindOf(err))
  }
  if err := as.ValidateUpload("", 1024); err == nil {
    t.Error("expected missing file name to be rejected")
  }
  if err := as.ValidateUpload("big.pdf", MaxUploadBytes+1); err == nil {
    t.Error("expected oversized upload to be rejected")
  }
  if err := as.ValidateUpload("exact.pdf", MaxUploadBytes); err != nil {
    t.Errorf("expected upload at the limit to validate, got %v", err)
  }
}

func TestFileTypeFor(t *testing.T) {
  as := NewAnalyzerService(logger.NewNop())

  cases := map[string]string{
    "a.pdf":      "PDF Document",
    "b.docx":     "Word Document",
    "c.XLSX":     "Excel Spreadsheet",
    "d.csv":      "CSV File",
    "e.jpeg":     "Image",
    "f.exe":      "Unknown",
    "noext":      "Unknown",
  }
  for fileName, want := range cases {
    if got := as.FileTypeFor(fileName); got != want {
      t.Errorf("FileTypeFor(%q) = %q, want %q", fileName, got, want)
    }
  }
}

func TestAnalyzeCSV(t *testing.T) {
  as := NewAnalyzerService(logger.NewNop())

  data := []byte("Date,Description,Amount\n2026-01-02,Rent,1200\n2026-01-05,Groceries,240.50\n2026-01-09,Transport,60\n")
  analysis, err := as.Analyze(context.Background(), "spending.csv", data)
  if err != nil {
    t.Fatalf("Analyze failed: %v", err)
  }
  if analysis.FileType != "CSV File" || analysis.AnalysisType != "data_analysis" {
    t.Errorf("unexpected classification: %s / %s", analysis.FileType, analysis.AnalysisType)
  }
  if analysis.Rows != 3 || analysis.Columns != 3 {
    t.Errorf("expected 3x3 table, got %dx%d", analysis.Rows, analysis.Columns)
  }
  if len(analysis.NumericColumns) != 1 || analysis.NumericColumns[0] != "Amount" {
    t.Errorf("expected Amount as the only numeric column, got %v", analysis.NumericColumns)
  }
  if len(analysis.PotentialFinancialColumns) != 1 || analysis.PotentialFinancialColumns[0] != "Amount" {
    t.Errorf("expected Amount flagged as financial, got %v", analysis.PotentialFinancialColumns)
  }

  stats, ok := analysis.NumericStatistics["Amount"]
  if !ok {
    t.Fatal("expected statistics for Amount column")
  }
  if stats.Count != 3 {
    t.Errorf("expected count 3, got %d", stats.Count)
  }
  if stats.Min != 60 || stats.Max != 1200 {
    t.Errorf("expected min 60 / max 1200, got %v / %v", stats.Min, stats.Max)
  }
  wantMean := (1200 + 240.50 + 60) / 3.0
  if diff := stats.Mean - wantMean; diff > 0.001 || diff < -0.001 {
    t.Errorf("expected mean %.3f, got %.3f", wantMean, stats.Mean)
  }
}

func TestAnalyzeCSVMixedColumnIsNotNumeric(t *testing.T) {
  as := NewAnalyzerService(logger.NewNop())

  data := []byte("Label,Value\nrent,1200\nfood,n/a\n")
  analysis, err := as.Analyze(context.Background(), "mixed.csv", data)
  if err != nil {
    t.Fatalf("Analyze failed: %v", err)
  }
  if len(analysis.NumericColumns) != 0 {
    t.Errorf("expected no numeric columns for a mixed column, got %v", analysis.NumericColumns)
  }
  if len(analysis.TextColumns) != 2 {
    t.Errorf("expected both columns classified as text, got %v", analysis.TextColumns)
  }
}

// Legacy binary workbooks are on the allow-list but not parseable; they must
// degrade to an empty-text result instead of failing the upload.
func TestAnalyzeLegacyXLSDegrades(t *testing.T) {
  as := NewAnalyzerService(logger.NewNop())

  // OLE2 compound-file header, the on-disk format of legacy .xls workbooks.
  data := append([]byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}, make([]byte, 504)...)
  analysis, err := as.Analyze(context.Background(), "ledger.xls", data)
  if err != nil {
    t.Fatalf("expected a degraded result for legacy .xls, got error: %v", err)
  }
  if analysis.FileType != "Excel Spreadsheet" {
    t.Errorf("expected Excel Spreadsheet, got %q", analysis.FileType)
  }
  if analysis.TextContent != "" {
    t.Errorf("expected empty text content in the degraded result, got %q", analysis.TextContent)
  }
  if analysis.Summary == "" {
    t.Error("expected the degraded result to carry a summary")
  }
}

func TestGenerateInsightsCSV(t *testing.T) {
  as := NewAnalyzerService(logger.NewNop())

  data := []byte("Date,Credit,Balance\n2026-01-02,500,1700\n2026-01-05,0,1700\n")
  analysis, err := as.Analyze(context.Background(), "statement.csv", data)
  if err != nil {
    t.Fatalf("Analyze failed: %v", err)
  }
  insights := as.GenerateInsights(analysis)

  var hasRowInsight, hasFinancial, hasExpense, hasCredit bool
  for _, insight := range insights {
    switch {
    case strings.Contains(insight, "CSV file with 2 rows and 3 columns"):
      hasRowInsight = true
    case strings.Contains(insight, "Financial data columns identified"):
      hasFinancial = true
    case strings.Contains(insight, "Expense data found"):
      hasExpense = true
    case strings.Contains(insight, "Credit information found"):
      hasCredit = true
    }
  }
  if !hasRowInsight || !hasFinancial || !hasExpense || !hasCredit {
    t.Errorf("missing expected insights, got %v", insights)
  }
}

func TestGenerateInsightsFinancialKeywordsCapped(t *testing.T) {
  as := NewAnalyzerService(logger.NewNop())

  analysis := &DocumentAnalysis{
    FileType:    "PDF Document",
    PageCount:   1,
    WordCount:   12,
    TextContent: "expense income budget investment profit loss revenue cost",
  }
  insights := as.GenerateInsights(analysis)

  for _, insight := range insights {
    if strings.HasPrefix(insight, "💼") {
      listed := strings.Split(strings.TrimPrefix(insight, "💼 Financial keywords found: "), ", ")
      if len(listed) > 5 {
        t.Errorf("expected keyword insight capped at 5, got %d: %q", len(listed), insight)
      }
      return
    }
  }
  t.Errorf("expected a financial keywords insight, got %v", insights)
}

func TestSupportedFileTypeList(t *testing.T) {
  list := SupportedFileTypeList()
  if len(list) != 5 {
    t.Fatalf("expected 5 file type groups, got %d: %v", len(list), list)
  }
  if !strings.HasPrefix(list[0], "PDF") {
    t.Errorf("expected PDF first, got %q", list[0])
  }
  joined := strings.Join(list, " ")
  for _, ext := range []string{".pdf", ".doc", ".docx", ".xlsx", ".xls", ".csv", ".png", ".jpg", ".jpeg", ".bmp", ".tiff"} {
    if !strings.Contains(joined, ext) {
      t.Errorf("expected %s to be advertised, got %v", ext, list)
    }
  }
}
