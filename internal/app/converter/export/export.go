package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/tealeg/xlsx"

	"media-transcriber/internal/app/model"
)

var headers = []string{
	"ID", "Created At", "File Name", "File Hash", "Duration (s)", "Model Used",
	"Language", "Confidence", "Processing Time (ms)", "From Cache", "Transcription", "Error Message",
}

// ContentType is the media type of the workbooks produced here.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ToExcel writes the history records to an .xlsx workbook.
func ToExcel(records []model.TranscriptionRecord, outputFilePath string) error {
	file, err := workbook(records)
	if err != nil {
		return err
	}
	if err := file.Save(outputFilePath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// WriteExcel streams the workbook to w.
func WriteExcel(records []model.TranscriptionRecord, w io.Writer) error {
	file, err := workbook(records)
	if err != nil {
		return err
	}
	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func workbook(records []model.TranscriptionRecord) (*xlsx.File, error) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transcriptions")
	if err != nil {
		return nil, fmt.Errorf("failed to add sheet: %w", err)
	}

	headerRow := sheet.AddRow()
	for _, h := range headers {
		headerRow.AddCell().Value = h
	}

	for _, r := range records {
		row := sheet.AddRow()
		row.AddCell().Value = r.ID
		row.AddCell().Value = r.CreatedAt.Format(time.RFC3339)
		row.AddCell().Value = r.FileName
		row.AddCell().Value = r.FileHash
		row.AddCell().Value = fmt.Sprintf("%.2f", r.AudioDuration)
		row.AddCell().Value = r.ModelUsed
		row.AddCell().Value = r.Language
		row.AddCell().Value = fmt.Sprintf("%.3f", r.Confidence)
		row.AddCell().Value = strconv.FormatInt(r.ProcessingTimeMs, 10)
		row.AddCell().Value = strconv.FormatBool(r.FromCache)
		row.AddCell().Value = r.Transcription
		row.AddCell().Value = r.ErrorMessage
	}
	return file, nil
}
