package services

import (
  "bytes"
  "context"
  "encoding/csv"
  "fmt"
  "image"
  "math"
  "sort"
  "strconv"
  "strings"

  "github.com/disintegration/imaging"
  "github.com/ledongthuc/pdf"
  "github.com/nguyenthenguyen/docx"
  "github.com/otiai10/gosseract/v2"
  "github.com/xuri/excelize/v2"

  _ "golang.org/x/image/bmp"
  _ "golang.org/x/image/tiff"

  "github.com/abdul-28930/MultilingualBudgerApp/internal/apperr"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/logger"
  "github.com/abdul-28930/MultilingualBudgerApp/internal/normalization"
)

// MaxUploadBytes is the hard server-side ceiling for uploaded documents.
const MaxUploadBytes int64 = 50 * 1024 * 1024

// supportedFileTypes maps a normalized extension to its human-readable type.
var supportedFileTypes = map[string]string{
  ".pdf":  "PDF Document",
  ".doc":  "Word Document",
  ".docx": "Word Document",
  ".xlsx": "Excel Spreadsheet",
  ".xls":  "Excel Spreadsheet",
  ".csv":  "CSV File",
  ".png":  "Image",
  ".jpg":  "Image",
  ".jpeg": "Image",
  ".bmp":  "Image",
  ".tiff": "Image",
}

// financialColumnKeywords flag spreadsheet columns that look like money.
var financialColumnKeywords = []string{
  "amount", "price", "cost", "fee", "balance", "total", "sum", "revenue", "income", "expense",
}

// financialTextKeywords are scanned for in extracted document text.
var financialTextKeywords = []string{
  "expense", "income", "budget", "investment", "profit", "loss", "revenue", "cost", "salary",
  "payment", "transaction", "account", "balance", "credit", "debit", "loan", "mortgage",
  "insurance", "tax", "savings",
}

type ColumnStatistics struct {
  Count  int     `json:"count"`
  Mean   float64 `json:"mean"`
  Min    float64 `json:"min"`
  Max    float64 `json:"max"`
  StdDev float64 `json:"std_dev"`
}

// TableAnalysis describes one sheet (or the single table of a CSV file).
type TableAnalysis struct {
  Name                      string                      `json:"name"`
  Rows                      int                         `json:"rows"`
  Columns                   int                         `json:"columns"`
  ColumnNames               []string                    `json:"column_names"`
  NumericColumns            []string                    `json:"numeric_columns"`
  TextColumns               []string                    `json:"text_columns"`
  NumericStatistics         map[string]ColumnStatistics `json:"numeric_statistics,omitempty"`
  PotentialFinancialColumns []string                    `json:"potential_financial_columns,omitempty"`
}

// DocumentAnalysis is the full result of analyzing one uploaded file. It is
// persisted verbatim as the document's analysis_result JSON.
type DocumentAnalysis struct {
  FileType                  string                      `json:"file_type"`
  AnalysisType              string                      `json:"analysis_type"`
  Summary                   string                      `json:"summary"`
  TextContent               string                      `json:"text_content"`
  WordCount                 int                         `json:"word_count"`
  CharCount                 int                         `json:"char_count"`
  PageCount                 int                         `json:"page_count,omitempty"`
  ParagraphCount            int                         `json:"paragraph_count,omitempty"`
  TableCount                int                         `json:"table_count,omitempty"`
  SheetCount                int                         `json:"sheet_count,omitempty"`
  TotalRows                 int                         `json:"total_rows,omitempty"`
  TotalColumns              int                         `json:"total_columns,omitempty"`
  Rows                      int                         `json:"rows,omitempty"`
  Columns                   int                         `json:"columns,omitempty"`
  ColumnNames               []string                    `json:"column_names,omitempty"`
  NumericColumns            []string                    `json:"numeric_columns,omitempty"`
  TextColumns               []string                    `json:"text_columns,omitempty"`
  NumericStatistics         map[string]ColumnStatistics `json:"numeric_statistics,omitempty"`
  PotentialFinancialColumns []string                    `json:"potential_financial_columns,omitempty"`
  Sheets                    map[string]*TableAnalysis   `json:"sheets,omitempty"`
  ImageWidth                int                         `json:"image_width,omitempty"`
  ImageHeight               int                         `json:"image_height,omitempty"`
}

type AnalyzerService interface {
  ValidateUpload(fileName string, size int64) error
  Analyze(ctx context.Context, fileName string, data []byte) (*DocumentAnalysis, error)
  GenerateInsights(analysis *DocumentAnalysis) []string
  FileTypeFor(fileName string) string
}

type analyzerService struct {
  log *logger.Logger
}

func NewAnalyzerService(log *logger.Logger) AnalyzerService {
  return &analyzerService{
    log: log.With("service", "AnalyzerService"),
  }
}

//----------------------------------------------------------------------------------------------------------------------
// Validation and dispatch
//----------------------------------------------------------------------------------------------------------------------

func (as *analyzerService) ValidateUpload(fileName string, size int64) error {
  if normalization.ParseInputString(fileName) == "" {
    as.log.Warn("No file name provided, Cannot proceed. Returning error.")
    return apperr.Validation("no file name provided")
  }
  ext := normalization.ParseFileExtension(fileName)
  if _, ok := supportedFileTypes[ext]; !ok {
    as.log.Warn("Unsupported file extension, Cannot proceed. Returning error.", "extension", ext)
    return apperr.Validation(fmt.Sprintf("unsupported file type: %s", ext))
  }
  if size > MaxUploadBytes {
    as.log.Warn("File exceeds maximum size, Cannot proceed. Returning error.", "size", size)
    return apperr.Validation(fmt.Sprintf("file size exceeds maximum limit of %dMB", MaxUploadBytes/(1024*1024)))
  }
  return nil
}

func (as *analyzerService) FileTypeFor(fileName string) string {
  if fileType, ok := supportedFileTypes[normalization.ParseFileExtension(fileName)]; ok {
    return fileType
  }
  return "Unknown"
}

func (as *analyzerService) Analyze(ctx context.Context, fileName string, data []byte) (*DocumentAnalysis, error) {
  ext := normalization.ParseFileExtension(fileName)
  switch ext {
  case ".pdf":
    return as.analyzePDF(data)
  case ".doc", ".docx":
    return as.analyzeWordDocument(data)
  case ".xlsx", ".xls":
    return as.analyzeExcelFile(data)
  case ".csv":
    return as.analyzeCSVFile(data)
  case ".png", ".jpg", ".jpeg", ".bmp", ".tiff":
    return as.analyzeImage(data)
  default:
    as.log.Warn("Unsupported file extension in dispatch, Cannot proceed. Returning error.", "extension", ext)
    return nil, apperr.Validation(fmt.Sprintf("unsupported file type: %s", ext))
  }
}

//----------------------------------------------------------------------------------------------------------------------
// PDF
//----------------------------------------------------------------------------------------------------------------------

func (as *analyzerService) analyzePDF(data []byte) (*DocumentAnalysis, error) {
  reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
  if err != nil {
    as.log.Warn("Failed to open PDF, Cannot proceed. Returning error.", "error", err)
    return nil, apperr.Validation("could not read PDF file")
  }
  pageCount := reader.NumPage()
  var textParts []string
  for i := 1; i <= pageCount; i++ {
    page := reader.Page(i)
    if page.V.IsNull() {
      continue
    }
    pageText, tErr := page.GetPlainText(nil)
    if tErr != nil {
      // Degraded result over hard failure: skip pages the extractor chokes on.
      as.log.Warn("Failed to extract text from PDF page, skipping", "page", i, "error", tErr)
      continue
    }
    if strings.TrimSpace(pageText) != "" {
      textParts = append(textParts, pageText)
    }
  }
  fullText := strings.Join(textParts, "\n")
  wordCount := len(strings.Fields(fullText))
  return &DocumentAnalysis{
    FileType:     "PDF Document",
    AnalysisType: "text_extraction",
    PageCount:    pageCount,
    TextContent:  fullText,
    WordCount:    wordCount,
    CharCount:    len(fullText),
    Summary:      fmt.Sprintf("PDF document with %d pages containing %d words", pageCount, wordCount),
  }, nil
}

//----------------------------------------------------------------------------------------------------------------------
// Word
//----------------------------------------------------------------------------------------------------------------------

var wordTagStripper = strings.NewReplacer("\r", "", "\t", " ")

func (as *analyzerService) analyzeWordDocument(data []byte) (*DocumentAnalysis, error) {
  reader, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
  if err != nil {
    // Legacy binary .doc files are not parseable; degrade to an empty-text
    // result so the caller still gets a document record.
    as.log.Warn("Failed to open Word document, returning degraded result", "error", err)
    return &DocumentAnalysis{
      FileType:     "Word Document",
      AnalysisType: "text_extraction",
      Summary:      "Word document (text extraction unavailable)",
    }, nil
  }
  defer reader.Close()

  content := reader.Editable().GetContent()
  paragraphCount := strings.Count(content, "</w:p>")
  tableCount := strings.Count(content, "<w:tbl>") + strings.Count(content, "<w:tbl ")

  // Flatten the document XML to plain text: paragraph boundaries become
  // newlines, every other tag is dropped.
  flattened := strings.ReplaceAll(content, "</w:p>", "\n")
  fullText := wordTagStripper.Replace(stripXMLTags(flattened))
  fullText = strings.TrimSpace(fullText)
  wordCount := len(strings.Fields(fullText))

  return &DocumentAnalysis{
    FileType:       "Word Document",
    AnalysisType:   "text_extraction",
    ParagraphCount: paragraphCount,
    TableCount:     tableCount,
    TextContent:    fullText,
    WordCount:      wordCount,
    CharCount:      len(fullText),
    Summary:        fmt.Sprintf("Word document with %d paragraphs and %d tables", paragraphCount, tableCount),
  }, nil
}

func stripXMLTags(in string) string {
  var b strings.Builder
  b.Grow(len(in))
  inTag := false
  for _, r := range in {
    switch {
    case r == '<':
      inTag = true
    case r == '>':
      inTag = false
    case !inTag:
      b.WriteRune(r)
    }
  }
  return b.String()
}

//----------------------------------------------------------------------------------------------------------------------
// Excel
//----------------------------------------------------------------------------------------------------------------------

func (as *analyzerService) analyzeExcelFile(data []byte) (*DocumentAnalysis, error) {
  file, err := excelize.OpenReader(bytes.NewReader(data))
  if err != nil {
    // Legacy binary .xls workbooks are not parseable; degrade to an empty-text
    // result so the caller still gets a document record.
    as.log.Warn("Failed to open Excel file, returning degraded result", "error", err)
    return &DocumentAnalysis{
      FileType:     "Excel Spreadsheet",
      AnalysisType: "data_analysis",
      Summary:      "Excel spreadsheet (data extraction unavailable)",
    }, nil
  }
  defer file.Close()

  sheetNames := file.GetSheetList()
  analysis := &DocumentAnalysis{
    FileType:     "Excel Spreadsheet",
    AnalysisType: "data_analysis",
    SheetCount:   len(sheetNames),
    Sheets:       make(map[string]*TableAnalysis, len(sheetNames)),
  }

  var textParts []string
  for _, sheetName := range sheetNames {
    rows, rErr := file.GetRows(sheetName)
    if rErr != nil {
      as.log.Warn("Failed to read sheet, skipping", "sheet", sheetName, "error", rErr)
      continue
    }
    var headers []string
    var records [][]string
    if len(rows) > 0 {
      headers = rows[0]
      records = rows[1:]
    }
    sheetAnalysis := analyzeTable(sheetName, headers, records)
    analysis.Sheets[sheetName] = sheetAnalysis

    textParts = append(textParts, fmt.Sprintf("\n--- Sheet: %s ---", sheetName))
    textParts = append(textParts, fmt.Sprintf("Rows: %d, Columns: %d", sheetAnalysis.Rows, sheetAnalysis.Columns))
    textParts = append(textParts, fmt.Sprintf("Columns: %s", strings.Join(sheetAnalysis.ColumnNames, ", ")))
    textParts = append(textParts, sampleRowsText(headers, records, 5)...)

    analysis.TotalRows += sheetAnalysis.Rows
    analysis.TotalColumns += sheetAnalysis.Columns
    analysis.PotentialFinancialColumns = append(analysis.PotentialFinancialColumns, sheetAnalysis.PotentialFinancialColumns...)
    analysis.NumericColumns = append(analysis.NumericColumns, sheetAnalysis.NumericColumns...)
    analysis.ColumnNames = append(analysis.ColumnNames, sheetAnalysis.ColumnNames...)
  }
  analysis.TextContent = strings.Join(textParts, "\n")
  analysis.WordCount = len(strings.Fields(analysis.TextContent))
  analysis.CharCount = len(analysis.TextContent)
  analysis.Summary = fmt.Sprintf("Excel file with %d sheets, %d total rows", len(sheetNames), analysis.TotalRows)
  return analysis, nil
}

//----------------------------------------------------------------------------------------------------------------------
// CSV
//----------------------------------------------------------------------------------------------------------------------

func (as *analyzerService) analyzeCSVFile(data []byte) (*DocumentAnalysis, error) {
  reader := csv.NewReader(bytes.NewReader(data))
  reader.FieldsPerRecord = -1
  rows, err := reader.ReadAll()
  if err != nil {
    as.log.Warn("Failed to parse CSV, Cannot proceed. Returning error.", "error", err)
    return nil, apperr.Validation("could not read CSV file")
  }
  var headers []string
  var records [][]string
  if len(rows) > 0 {
    headers = rows[0]
    records = rows[1:]
  }
  table := analyzeTable("CSV Data", headers, records)

  var textParts []string
  textParts = append(textParts, "CSV File Analysis")
  textParts = append(textParts, fmt.Sprintf("Rows: %d, Columns: %d", table.Rows, table.Columns))
  textParts = append(textParts, fmt.Sprintf("Columns: %s", strings.Join(table.ColumnNames, ", ")))
  textParts = append(textParts, sampleRowsText(headers, records, 10)...)
  for _, column := range table.NumericColumns {
    if stats, ok := table.NumericStatistics[column]; ok {
      textParts = append(textParts, fmt.Sprintf(
        "%s: count=%d mean=%.2f min=%.2f max=%.2f std=%.2f",
        column, stats.Count, stats.Mean, stats.Min, stats.Max, stats.StdDev,
      ))
    }
  }
  textContent := strings.Join(textParts, "\n")

  return &DocumentAnalysis{
    FileType:                  "CSV File",
    AnalysisType:              "data_analysis",
    Rows:                      table.Rows,
    Columns:                   table.Columns,
    ColumnNames:               table.ColumnNames,
    NumericColumns:            table.NumericColumns,
    TextColumns:               table.TextColumns,
    NumericStatistics:         table.NumericStatistics,
    PotentialFinancialColumns: table.PotentialFinancialColumns,
    TextContent:               textContent,
    WordCount:                 len(strings.Fields(textContent)),
    CharCount:                 len(textContent),
    Summary:                   fmt.Sprintf("CSV file with %d rows and %d columns", table.Rows, table.Columns),
  }, nil
}

//----------------------------------------------------------------------------------------------------------------------
// Images (OCR)
//----------------------------------------------------------------------------------------------------------------------

func (as *analyzerService) analyzeImage(data []byte) (*DocumentAnalysis, error) {
  cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
  if err != nil {
    as.log.Warn("Failed to decode image, Cannot proceed. Returning error.", "error", err)
    return nil, apperr.Validation("could not read image file")
  }

  // OCR failures degrade to an empty-text result, the dimensions alone still
  // make for a useful document record.
  text := ""
  if ocrInput, pErr := as.prepareForOCR(data); pErr == nil {
    client := gosseract.NewClient()
    defer client.Close()
    if sErr := client.SetImageFromBytes(ocrInput); sErr != nil {
      as.log.Warn("Failed to hand image to OCR engine, returning degraded result", "error", sErr)
    } else if extracted, tErr := client.Text(); tErr != nil {
      as.log.Warn("OCR extraction failed, returning degraded result", "error", tErr)
    } else {
      text = extracted
    }
  } else {
    as.log.Warn("Failed to preprocess image for OCR, returning degraded result", "error", pErr)
  }

  wordCount := len(strings.Fields(text))
  return &DocumentAnalysis{
    FileType:     "Image",
    AnalysisType: "ocr_extraction",
    ImageWidth:   cfg.Width,
    ImageHeight:  cfg.Height,
    TextContent:  text,
    WordCount:    wordCount,
    CharCount:    len(text),
    Summary:      fmt.Sprintf("Image (%dx%d) with %d words extracted via OCR", cfg.Width, cfg.Height, wordCount),
  }, nil
}

// prepareForOCR grayscales the image and re-encodes it as PNG so the OCR
// engine gets a consistent input regardless of source format.
func (as *analyzerService) prepareForOCR(data []byte) ([]byte, error) {
  img, err := imaging.Decode(bytes.NewReader(data))
  if err != nil {
    return nil, fmt.Errorf("failed to decode image for OCR: %w", err)
  }
  gray := imaging.Grayscale(img)
  var buf bytes.Buffer
  if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
    return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
  }
  return buf.Bytes(), nil
}

//----------------------------------------------------------------------------------------------------------------------
// Tabular helpers
//----------------------------------------------------------------------------------------------------------------------

func analyzeTable(name string, headers []string, records [][]string) *TableAnalysis {
  table := &TableAnalysis{
    Name:        name,
    Rows:        len(records),
    Columns:     len(headers),
    ColumnNames: append([]string{}, headers...),
  }
  for colIdx, column := range headers {
    values := columnValues(records, colIdx)
    numeric := parseNumericColumn(values)
    if numeric != nil {
      table.NumericColumns = append(table.NumericColumns, column)
      if table.NumericStatistics == nil {
        table.NumericStatistics = make(map[string]ColumnStatistics)
      }
      table.NumericStatistics[column] = *numeric
    } else if len(values) > 0 {
      table.TextColumns = append(table.TextColumns, column)
    }
    if isFinancialColumn(column) {
      table.PotentialFinancialColumns = append(table.PotentialFinancialColumns, column)
    }
  }
  return table
}

func columnValues(records [][]string, colIdx int) []string {
  var values []string
  for _, record := range records {
    if colIdx >= len(record) {
      continue
    }
    value := strings.TrimSpace(record[colIdx])
    if value != "" {
      values = append(values, value)
    }
  }
  return values
}

// parseNumericColumn returns summary statistics when every non-empty cell in
// the column parses as a number, nil otherwise.
func parseNumericColumn(values []string) *ColumnStatistics {
  if len(values) == 0 {
    return nil
  }
  nums := make([]float64, 0, len(values))
  for _, value := range values {
    num, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
    if err != nil {
      return nil
    }
    nums = append(nums, num)
  }
  stats := &ColumnStatistics{
    Count: len(nums),
    Min:   nums[0],
    Max:   nums[0],
  }
  var sum float64
  for _, num := range nums {
    sum += num
    stats.Min = math.Min(stats.Min, num)
    stats.Max = math.Max(stats.Max, num)
  }
  stats.Mean = sum / float64(len(nums))
  var variance float64
  for _, num := range nums {
    variance += (num - stats.Mean) * (num - stats.Mean)
  }
  if len(nums) > 1 {
    stats.StdDev = math.Sqrt(variance / float64(len(nums)-1))
  }
  return stats
}

func isFinancialColumn(column string) bool {
  lowered := strings.ToLower(column)
  for _, keyword := range financialColumnKeywords {
    if strings.Contains(lowered, keyword) {
      return true
    }
  }
  return false
}

func sampleRowsText(headers []string, records [][]string, limit int) []string {
  if len(records) == 0 {
    return nil
  }
  out := []string{"Sample data:"}
  out = append(out, strings.Join(headers, " | "))
  for i, record := range records {
    if i >= limit {
      break
    }
    out = append(out, strings.Join(record, " | "))
  }
  return out
}

//----------------------------------------------------------------------------------------------------------------------
// Insights
//----------------------------------------------------------------------------------------------------------------------

// GenerateInsights derives the ordered list of human-readable insight strings
// shown to the user alongside the AI advice.
func (as *analyzerService) GenerateInsights(analysis *DocumentAnalysis) []string {
  var insights []string

  switch analysis.FileType {
  case "Excel Spreadsheet":
    insights = append(insights, fmt.Sprintf("📊 Excel file contains %d sheets with %d total rows", analysis.SheetCount, analysis.TotalRows))
    if len(analysis.PotentialFinancialColumns) > 0 {
      insights = append(insights, fmt.Sprintf("💰 Detected financial columns: %s", strings.Join(analysis.PotentialFinancialColumns, ", ")))
    }
    if len(analysis.NumericColumns) > 0 {
      insights = append(insights, fmt.Sprintf("📈 Contains %d numeric columns for analysis", len(analysis.NumericColumns)))
    }
  case "CSV File":
    insights = append(insights, fmt.Sprintf("📋 CSV file with %d rows and %d columns", analysis.Rows, analysis.Columns))
    if len(analysis.PotentialFinancialColumns) > 0 {
      insights = append(insights, fmt.Sprintf("💰 Financial data columns identified: %s", strings.Join(analysis.PotentialFinancialColumns, ", ")))
    }
  case "PDF Document":
    insights = append(insights, fmt.Sprintf("📄 PDF document with %d pages", analysis.PageCount))
    insights = append(insights, fmt.Sprintf("📝 Contains %d words of text content", analysis.WordCount))
  case "Word Document":
    insights = append(insights, fmt.Sprintf("📝 Word document with %d paragraphs", analysis.ParagraphCount))
    if analysis.TableCount > 0 {
      insights = append(insights, fmt.Sprintf("📊 Contains %d tables with structured data", analysis.TableCount))
    }
  case "Image":
    insights = append(insights, fmt.Sprintf("🖼️ Image document (%dx%d)", analysis.ImageWidth, analysis.ImageHeight))
    insights = append(insights, fmt.Sprintf("🔍 OCR extracted %d words", analysis.WordCount))
  }

  if analysis.TextContent != "" {
    textLower := strings.ToLower(analysis.TextContent)
    var foundKeywords []string
    for _, keyword := range financialTextKeywords {
      if strings.Contains(textLower, keyword) {
        foundKeywords = append(foundKeywords, keyword)
      }
    }
    if len(foundKeywords) > 0 {
      if len(foundKeywords) > 5 {
        foundKeywords = foundKeywords[:5]
      }
      insights = append(insights, fmt.Sprintf("💼 Financial keywords found: %s", strings.Join(foundKeywords, ", ")))
    }
  }

  if len(analysis.PotentialFinancialColumns) > 0 {
    insights = append(insights, "💰 Expense data found")
  }
  if hasCreditColumns(analysis.ColumnNames) {
    insights = append(insights, "🏦 Credit information found")
  }
  return insights
}

func hasCreditColumns(columnNames []string) bool {
  joined := strings.ToLower(strings.Join(columnNames, " "))
  for _, keyword := range []string{"credit", "debit", "balance"} {
    if strings.Contains(joined, keyword) {
      return true
    }
  }
  return false
}

// SupportedFileTypeList returns the advertised upload formats, stable-sorted
// for the document-info endpoint.
func SupportedFileTypeList() []string {
  extsByType := map[string][]string{}
  for ext, fileType := range supportedFileTypes {
    extsByType[fileType] = append(extsByType[fileType], ext)
  }
  labels := map[string]string{
    "PDF Document":      "PDF",
    "Word Document":     "Word Documents",
    "Excel Spreadsheet": "Excel Spreadsheets",
    "CSV File":          "CSV Files",
    "Image":             "Images",
  }
  order := []string{"PDF Document", "Word Document", "Excel Spreadsheet", "CSV File", "Image"}
  var out []string
  for _, fileType := range order {
    exts := extsByType[fileType]
    sort.Strings(exts)
    out = append(out, fmt.Sprintf("%s (%s)", labels[fileType], strings.Join(exts, ", ")))
  }
  return out
}
