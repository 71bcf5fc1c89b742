package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key          string
	Kind         string
	Timestamp    string
	Conversation string
	Author       string
	Detail       string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// StartDebugServer serves a read-only HTML view over the Badger keyspace
// plus live runtime stats. Debug tooling only, never exposed publicly.
func StartDebugServer(db *badger.DB, port int, endpoint string, mapper RowMapper, statsProvider StatsProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	if mapper == nil {
		mapper = ChatMapper
	}

	mux.HandleFunc(endpoint, func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "chat:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}

		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux)
	}()
}

// ChatMapper renders message records ("chat:{pair}:{ts}:{uuid}") and
// falls back to a raw row for anything else.
func ChatMapper(key string, val []byte) InspectRow {
	row := InspectRow{
		Key:       key,
		Kind:      "RAW",
		Timestamp: "--:--:--",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	parts := strings.SplitN(key, ":", 4)

	switch parts[0] {
	case "chat":
		if len(parts) != 4 {
			return row
		}
		row.Kind = "CHAT"
		row.Conversation = parts[1]
		if tsNano, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
			row.Timestamp = time.Unix(0, tsNano).UTC().Format("15:04:05")
		}
		var record struct {
			SenderID string `json:"senderId"`
			Text     string `json:"text"`
			ImageURL string `json:"image"`
		}
		if err := json.Unmarshal(val, &record); err == nil {
			row.Author = shorten(record.SenderID)
			row.Detail = record.Text
			if record.ImageURL != "" {
				row.Detail += " [image]"
			}
		}
	case "user":
		row.Kind = "USER"
		var record struct {
			FullName string `json:"fullName"`
			Email    string `json:"email"`
		}
		if err := json.Unmarshal(val, &record); err == nil {
			row.Detail = record.FullName + " <" + record.Email + ">"
		}
	}
	return row
}

func shorten(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
