package main

import (
	"chat-wire/internal"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/olekukonko/tablewriter"
)

// Read-only CLI over the chat keyspace. Handy to eyeball conversations
// and accounts while the server is running.
func main() {
	dbPath := flag.String("db", "data/chat", "Path to badger DB")
	// By default we scan "chat:" to avoid hitting the idx: secondary indexes
	prefix := flag.String("prefix", "chat:", "Prefix to scan")
	flag.Parse()

	// Note: BypassLockGuard allows opening if another process (the server) holds the lock
	opts := badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Kind", "Time", "Conversation", "Author", "Detail"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(*prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()

			// Secondary indexes hold bare ids, nothing worth rendering
			if strings.HasPrefix(string(item.Key()), "idx:") {
				continue
			}

			err := item.Value(func(v []byte) error {
				row := internal.ChatMapper(string(item.Key()), v)
				table.Append([]string{
					row.Key,
					row.Kind,
					row.Timestamp,
					row.Conversation,
					row.Author,
					row.Detail,
				})
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		log.Fatal(err)
	}

	table.Render()
}
