package questions

import (
	"encoding/json"
	"log"
	"strings"
	"unicode/utf8"

	llmdomain "github.com/bryanwahyu/uxinsight-gateway/internal/domain/llm"
)

const jsonMediaType = "application/json"

// ExtractTrackedData klasifikasi attachment jadi tracked-data points.
// Hanya file dengan content type persis "application/json" yang diproses
// (tanpa sniffing); array di-flatten elemen per elemen, object jadi satu entry.
// File yang gagal di-parse dilewati tanpa menghentikan sisanya.
func ExtractTrackedData(files []UploadedFile) []map[string]any {
	var tracked []map[string]any
	for _, f := range files {
		if f.ContentType != jsonMediaType {
			continue
		}
		if !utf8.Valid(f.Data) {
			log.Printf("skipping attachment %s: not valid utf-8", f.Filename)
			continue
		}
		text := string(f.Data)
		if strings.HasPrefix(strings.TrimSpace(text), "[") {
			var arr []map[string]any
			if err := json.Unmarshal([]byte(text), &arr); err != nil {
				log.Printf("skipping attachment %s: %v", f.Filename, err)
				continue
			}
			tracked = append(tracked, arr...)
		} else {
			var obj map[string]any
			if err := json.Unmarshal([]byte(text), &obj); err != nil {
				log.Printf("skipping attachment %s: %v", f.Filename, err)
				continue
			}
			tracked = append(tracked, obj)
		}
	}
	return tracked
}

// AssemblePayload rakit request body untuk LLM backend.
// visionAnalysis adalah JSON array terserialisasi dari caller;
// kalau gagal di-parse, field vision di-drop diam-diam.
func AssemblePayload(title string, tracked []map[string]any, visionAnalysis string) llmdomain.QueryPayload {
	payload := llmdomain.QueryPayload{Question: title}
	if len(tracked) > 0 {
		payload.TrackedData = tracked
	}
	if visionAnalysis != "" {
		var visionResults []map[string]any
		if err := json.Unmarshal([]byte(visionAnalysis), &visionResults); err != nil {
			log.Printf("ignoring vision analysis: %v", err)
		} else {
			payload.Vision = visionResults
		}
	}
	return payload
}
