package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"gamechat/repositories"
)

// viewer scans the message store read-only and prints one row per
// message. Safe to run while the server holds the badger lock.
func main() {
	_ = godotenv.Load()

	dbPath := flag.String("db", os.Getenv("BADGER_FILEPATH"), "Path to badger DB")
	conv := flag.String("conv", "", "Restrict to one conversation, e.g. alice,bob")
	flag.Parse()

	db, err := openDB(*dbPath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	prefix := "msg:"
	if *conv != "" {
		users := strings.SplitN(strings.ToLower(*conv), ",", 2)
		if len(users) != 2 {
			log.Fatal("-conv expects two usernames separated by a comma")
		}
		a, b := strings.TrimSpace(users[0]), strings.TrimSpace(users[1])
		if a > b {
			a, b = b, a
		}
		prefix = fmt.Sprintf("msg:%s|%s:", a, b)
	}

	header := fmt.Sprintf(" Message store: %s ", *dbPath)
	fmt.Println(color.New(color.BgBlack, color.FgGreen).Render(header))

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "From", "To", "Type", "Edited", "Reaction", "Created At", "Body"})
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

		prefixBytes := []byte(prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				message, err := repositories.DecodeStored(v)
				if err != nil {
					fmt.Printf("Error decoding key %s: %v\n", string(item.Key()), err)
					return nil
				}

				displayID := message.ID
				if len(displayID) > 8 {
					displayID = displayID[:8]
				}
				edited := ""
				if message.Edited {
					edited = "yes"
				}

				table.Append([]string{
					displayID,
					message.From,
					message.To,
					string(message.Type),
					edited,
					message.Reaction,
					message.CreatedAt.Format(time.DateTime),
					excerpt(message.Body),
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

// excerpt trims the body to a single short line for the table.
func excerpt(body string) string {
	body = strings.ReplaceAll(body, "\n", " ")
	runes := []rune(body)
	if len(runes) > 48 {
		return string(runes[:48]) + "…"
	}
	return body
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true)
	return badger.Open(opts)
}
