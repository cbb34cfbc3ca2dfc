package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vestor-labs/ingest-cli/internal/model"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage an investor's source documents",
}

var docsAddURLCmd = &cobra.Command{
	Use:   "add-url <investor-id> <url>",
	Short: "Add a web page as a source document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addDocument(cmd, model.Document{
			InvestorID: args[0],
			Type:       model.DocumentTypeURL,
			URL:        args[1],
		}, args[1])
	},
}

var docsAddPDFCmd = &cobra.Command{
	Use:   "add-pdf <investor-id> <storage-key>",
	Short: "Add a stored PDF as a source document",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addDocument(cmd, model.Document{
			InvestorID: args[0],
			Type:       model.DocumentTypePDF,
			StorageKey: args[1],
		}, args[1])
	},
}

var docsAddTextCmd = &cobra.Command{
	Use:   "add-text <investor-id>",
	Short: "Add pasted text from stdin as a source document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := io.ReadAll(os.Stdin)
		if err != nil {
			return eris.Wrap(err, "read stdin")
		}
		if len(text) == 0 {
			return eris.New("no text on stdin")
		}
		return addDocument(cmd, model.Document{
			InvestorID:    args[0],
			Type:          model.DocumentTypePasted,
			ExtractedText: string(text),
		}, string(text))
	},
}

var docsListCmd = &cobra.Command{
	Use:   "list <investor-id>",
	Short: "List an investor's documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		docs, err := st.ListDocuments(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "docs list")
		}
		if len(docs) == 0 {
			fmt.Fprintln(os.Stderr, "No documents found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "ID\tTYPE\tSOURCE\tSTATUS\tERROR")
		for _, d := range docs {
			source := d.SourceRef()
			if len(source) > 50 {
				source = source[:47] + "..."
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				truncateID(d.ID), d.Type, source, d.Status, d.Error)
		}
		return w.Flush()
	},
}

// addDocument persists a new source document, deduplicating by content hash
// within the owning user. Re-adding the same source returns the existing row.
func addDocument(cmd *cobra.Command, doc model.Document, hashInput string) error {
	ctx := cmd.Context()

	st, err := initStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close() //nolint:errcheck
	if err := st.Migrate(ctx); err != nil {
		return err
	}

	p, err := st.GetProfile(ctx, doc.InvestorID)
	if err != nil {
		return eris.Wrap(err, "docs add")
	}
	doc.UserID = p.UserID

	sum := sha256.Sum256([]byte(hashInput))
	doc.ContentHash = hex.EncodeToString(sum[:])

	existing, err := st.GetDocumentByHash(ctx, doc.UserID, doc.ContentHash)
	if err != nil {
		return eris.Wrap(err, "docs add")
	}
	if existing != nil {
		zap.L().Info("document already exists, skipping",
			zap.String("document_id", existing.ID),
			zap.String("content_hash", doc.ContentHash),
		)
		return printJSON(existing)
	}

	created, err := st.CreateDocument(ctx, doc)
	if err != nil {
		return eris.Wrap(err, "docs add")
	}

	zap.L().Info("document added",
		zap.String("document_id", created.ID),
		zap.String("type", string(created.Type)),
		zap.String("source", created.SourceRef()),
	)
	return printJSON(created)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	docsCmd.AddCommand(docsAddURLCmd)
	docsCmd.AddCommand(docsAddPDFCmd)
	docsCmd.AddCommand(docsAddTextCmd)
	docsCmd.AddCommand(docsListCmd)
	rootCmd.AddCommand(docsCmd)
}
