package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/hpungsan/profreach/internal/backup"
	"github.com/hpungsan/profreach/internal/errors"
	"github.com/hpungsan/profreach/internal/kvstore"
	"github.com/hpungsan/profreach/internal/oracle"
	"github.com/hpungsan/profreach/internal/outreach"
	"github.com/hpungsan/profreach/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(a *app) *cli.App {
	cliApp := &cli.App{
		Name:    "profreach",
		Usage:   "Professor outreach tracker",
		Version: Version,
		Commands: []*cli.Command{
			addCmd(a),
			listCmd(a),
			showCmd(a),
			updateCmd(a),
			deleteCmd(a),
			profileCmd(a),
			memoryCmd(a),
			docsCmd(a),
			draftsCmd(a),
			lookupCmd(a),
			emailCmd(a),
			chatCmd(a),
			exportCmd(a),
			importCmd(a),
			keyCmd(a),
			serveCmd(a),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	cliApp.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return cliApp
}

// addCmd creates the add command.
func addCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a professor",
		ArgsUsage: "<name>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address"},
			&cli.StringFlag{Name: "university", Aliases: []string{"u"}, Usage: "University name"},
			&cli.StringFlag{Name: "department", Aliases: []string{"d"}, Usage: "Department name"},
			&cli.StringFlag{Name: "country", Usage: "Country"},
			&cli.StringFlag{Name: "areas", Usage: "Comma-separated research areas"},
			&cli.StringFlag{Name: "website", Usage: "Faculty page URL"},
			&cli.StringFlag{Name: "notes", Usage: "Free-form notes"},
		},
		Action: func(c *cli.Context) error {
			name := strings.TrimSpace(c.Args().First())
			if name == "" {
				return outputError(errors.NewInvalidRequest("name is required"))
			}

			p := outreach.NewProfessor(name)
			p.Email = c.String("email")
			p.University = c.String("university")
			p.Department = c.String("department")
			p.Country = c.String("country")
			if areas := c.String("areas"); areas != "" {
				p.ResearchAreas = splitList(areas)
			}
			p.WebsiteURL = c.String("website")
			p.Notes = c.String("notes")

			if err := a.repo.AddProfessor(p); err != nil {
				return outputError(err)
			}
			return outputJSON(p)
		},
	}
}

// listCmd creates the list command.
func listCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List all professors",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Filter by application status"},
		},
		Action: func(c *cli.Context) error {
			professors := a.repo.Professors()
			if status := c.String("status"); status != "" {
				filtered := make([]outreach.Professor, 0)
				for _, p := range professors {
					if p.ApplicationStatus == outreach.ApplicationStatus(status) {
						filtered = append(filtered, p)
					}
				}
				professors = filtered
			}
			return outputJSON(professors)
		},
	}
}

// showCmd creates the show command.
func showCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a professor with their chats and drafts",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			p := a.repo.Professor(id)
			if p == nil {
				return outputError(errors.NewNotFound("professor", id))
			}
			return outputJSON(map[string]any{
				"professor": p,
				"chats":     a.repo.ChatsByProfessor(id),
				"drafts":    a.repo.DraftsByProfessor(id),
			})
		},
	}
}

// updateCmd creates the update command.
func updateCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "update",
		Usage:     "Update fields on a professor",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Usage: "Professor's full name"},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Email address"},
			&cli.StringFlag{Name: "university", Aliases: []string{"u"}, Usage: "University name"},
			&cli.StringFlag{Name: "department", Aliases: []string{"d"}, Usage: "Department name"},
			&cli.StringFlag{Name: "country", Usage: "Country"},
			&cli.StringFlag{Name: "areas", Usage: "Comma-separated research areas"},
			&cli.StringFlag{Name: "hiring", Usage: "Hiring status: unknown|actively_hiring|maybe_hiring|not_hiring"},
			&cli.StringFlag{Name: "status", Aliases: []string{"s"}, Usage: "Application status"},
			&cli.StringFlag{Name: "notes", Usage: "Free-form notes"},
			&cli.BoolFlag{Name: "contacted", Usage: "Mark as contacted now"},
		},
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			if a.repo.Professor(id) == nil {
				return outputError(errors.NewNotFound("professor", id))
			}
			if hiring := c.String("hiring"); hiring != "" && !outreach.HiringStatus(hiring).Valid() {
				return outputError(errors.NewInvalidRequest("unknown hiring status: " + hiring))
			}
			if status := c.String("status"); status != "" && !outreach.ApplicationStatus(status).Valid() {
				return outputError(errors.NewInvalidRequest("unknown application status: " + status))
			}

			err := a.repo.UpdateProfessor(id, func(p *outreach.Professor) {
				if c.IsSet("name") {
					p.Name = c.String("name")
				}
				if c.IsSet("email") {
					p.Email = c.String("email")
				}
				if c.IsSet("university") {
					p.University = c.String("university")
				}
				if c.IsSet("department") {
					p.Department = c.String("department")
				}
				if c.IsSet("country") {
					p.Country = c.String("country")
				}
				if c.IsSet("areas") {
					p.ResearchAreas = splitList(c.String("areas"))
				}
				if hiring := c.String("hiring"); hiring != "" {
					p.HiringStatus = outreach.HiringStatus(hiring)
				}
				if status := c.String("status"); status != "" {
					p.ApplicationStatus = outreach.ApplicationStatus(status)
				}
				if c.IsSet("notes") {
					p.Notes = c.String("notes")
				}
				if c.Bool("contacted") {
					now := outreach.Now()
					p.LastContacted = &now
				}
			})
			if err != nil {
				return outputError(err)
			}
			return outputJSON(a.repo.Professor(id))
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a professor and their chats and drafts",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			if a.repo.Professor(id) == nil {
				return outputError(errors.NewNotFound("professor", id))
			}
			if err := a.repo.DeleteProfessor(id); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]any{"deleted": id})
		},
	}
}

// profileCmd creates the profile command.
func profileCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "Show or update the applicant profile",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the profile",
				Action: func(c *cli.Context) error {
					return outputJSON(a.repo.Profile())
				},
			},
			{
				Name:  "set",
				Usage: "Replace the profile with JSON piped via stdin",
				Action: func(c *cli.Context) error {
					if !stdinHasData() {
						return outputError(errors.NewInvalidRequest("profile JSON must be piped via stdin"))
					}
					raw, err := readStdin()
					if err != nil {
						return outputError(errors.NewInternal(err))
					}
					var p outreach.Profile
					if err := json.Unmarshal([]byte(raw), &p); err != nil {
						return outputError(errors.NewInvalidRequest("invalid profile JSON: " + err.Error()))
					}
					if err := a.repo.SetProfile(p); err != nil {
						return outputError(err)
					}
					return outputJSON(p)
				},
			},
			{
				Name:      "resume",
				Usage:     "Parse a resume file with AI and merge it into the profile",
				ArgsUsage: "<path>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "mime", Usage: "MIME type (default: application/pdf)"},
				},
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						return outputError(errors.NewInvalidRequest("path is required"))
					}
					data, err := os.ReadFile(path)
					if err != nil {
						return outputError(errors.NewInvalidRequest("failed to read file: " + err.Error()))
					}

					parsed, err := a.ai.ParseResume(c.Context, data, c.String("mime"))
					if err != nil {
						return outputError(err)
					}
					merged := outreach.MergeProfile(a.repo.Profile(), parsed)
					if err := a.repo.SetProfile(merged); err != nil {
						return outputError(err)
					}
					return outputJSON(merged)
				},
			},
		},
	}
}

// memoryCmd creates the memory command.
func memoryCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "memory",
		Usage: "Manage AI context memory",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Store a memory item",
				ArgsUsage: "<content>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "source", Value: "manual", Usage: "Where this came from"},
					&cli.StringFlag{Name: "tags", Usage: "Comma-separated tags"},
				},
				Action: func(c *cli.Context) error {
					content := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
					if content == "" {
						return outputError(errors.NewInvalidRequest("content is required"))
					}
					item := outreach.MemoryItem{
						ID:        outreach.NewID(),
						Content:   content,
						Source:    c.String("source"),
						Tags:      splitList(c.String("tags")),
						CreatedAt: outreach.Now(),
					}
					if err := a.repo.AddMemory(item); err != nil {
						return outputError(err)
					}
					return outputJSON(item)
				},
			},
			{
				Name:  "list",
				Usage: "List stored memory items",
				Action: func(c *cli.Context) error {
					return outputJSON(a.repo.Memory())
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a memory item",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id := c.Args().First()
					if err := a.repo.DeleteMemory(id); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"deleted": id})
				},
			},
		},
	}
}

// docsCmd creates the docs command.
func docsCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "docs",
		Usage: "Manage stored documents",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List stored documents (content omitted)",
				Action: func(c *cli.Context) error {
					docs, err := a.repo.Documents(c.Context)
					if err != nil {
						return outputError(err)
					}
					type docInfo struct {
						ID        string `json:"id"`
						Name      string `json:"name"`
						Category  string `json:"category"`
						MimeType  string `json:"mimeType"`
						Size      int64  `json:"size"`
						CreatedAt string `json:"createdAt"`
					}
					out := make([]docInfo, 0, len(docs))
					for _, d := range docs {
						out = append(out, docInfo{d.ID, d.Name, string(d.Category), d.MimeType, d.Size, d.CreatedAt})
					}
					return outputJSON(out)
				},
			},
			{
				Name:      "add",
				Usage:     "Store a text document from a file",
				ArgsUsage: "<path>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "Display name (default: file name)"},
					&cli.StringFlag{Name: "category", Value: "other",
						Usage: "Category: resume|cover_letter|sop|transcript|writing_sample|other"},
					&cli.StringFlag{Name: "mime", Value: "text/plain", Usage: "MIME type"},
				},
				Action: func(c *cli.Context) error {
					path := c.Args().First()
					if path == "" {
						return outputError(errors.NewInvalidRequest("path is required"))
					}
					category := outreach.DocumentCategory(c.String("category"))
					if !category.Valid() {
						return outputError(errors.NewInvalidRequest("unknown category: " + c.String("category")))
					}
					data, err := os.ReadFile(path)
					if err != nil {
						return outputError(errors.NewInvalidRequest("failed to read file: " + err.Error()))
					}
					if int64(len(data)) > a.cfg.MaxDocumentBytes {
						return outputError(errors.NewDocumentTooLarge(a.cfg.MaxDocumentBytes, int64(len(data))))
					}

					name := c.String("name")
					if name == "" {
						name = filepath.Base(path)
					}
					doc := outreach.Document{
						ID:        outreach.NewID(),
						Name:      name,
						Category:  category,
						Content:   string(data),
						MimeType:  c.String("mime"),
						Size:      int64(len(data)),
						CreatedAt: outreach.Now(),
					}
					if err := a.repo.AddDocument(c.Context, doc); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"id": doc.ID, "name": doc.Name, "size": doc.Size})
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a document",
				ArgsUsage: "<id>",
				Action: func(c *cli.Context) error {
					id := c.Args().First()
					if err := a.repo.DeleteDocument(c.Context, id); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"deleted": id})
				},
			},
		},
	}
}

// draftsCmd creates the drafts command.
func draftsCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "drafts",
		Usage: "List email drafts",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "professor", Aliases: []string{"p"}, Usage: "Only drafts for this professor id"},
		},
		Action: func(c *cli.Context) error {
			if id := c.String("professor"); id != "" {
				return outputJSON(a.repo.DraftsByProfessor(id))
			}
			return outputJSON(a.repo.Drafts())
		},
	}
}

// lookupCmd creates the lookup command.
func lookupCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "Look up a professor on the web and optionally save them",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "save", Usage: "Save the result as a new professor"},
		},
		Action: func(c *cli.Context) error {
			query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			result, err := a.ai.Lookup(c.Context, query)
			if err != nil {
				return outputError(err)
			}
			if !c.Bool("save") {
				return outputJSON(result)
			}

			name := result.Name
			if name == "" {
				name = query
			}
			p := outreach.NewProfessor(name)
			p.Email = result.Email
			p.University = result.University
			p.Department = result.Department
			p.Country = result.Country
			if result.ResearchAreas != nil {
				p.ResearchAreas = result.ResearchAreas
			}
			if result.RecentPapers != nil {
				p.RecentPapers = result.RecentPapers
			}
			p.WebsiteURL = result.WebsiteURL
			p.ScholarURL = result.ScholarURL
			p.HiringStatus = result.HiringStatus
			p.Notes = result.Notes
			if err := a.repo.AddProfessor(p); err != nil {
				return outputError(err)
			}
			return outputJSON(p)
		},
	}
}

// emailCmd creates the email command.
func emailCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "email",
		Usage:     "Draft an outreach email for a professor and save it",
		ArgsUsage: "<professor-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "template", Aliases: []string{"t"}, Value: "cold_outreach",
				Usage: "Template: cold_outreach|follow_up|thank_you|application_inquiry|custom"},
		},
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			p := a.repo.Professor(id)
			if p == nil {
				return outputError(errors.NewNotFound("professor", id))
			}

			result, err := a.ai.DraftEmail(c.Context, oracle.EmailRequest{
				Professor: *p,
				Profile:   a.repo.Profile(),
				Template:  outreach.EmailTemplate(c.String("template")),
				Memory:    contextMemory(a),
			})
			if err != nil {
				return outputError(err)
			}

			draft := outreach.EmailDraft{
				ID:          outreach.NewID(),
				ProfessorID: p.ID,
				Template:    outreach.EmailTemplate(c.String("template")),
				Subject:     result.Subject,
				Body:        result.Body,
				CreatedAt:   outreach.Now(),
			}
			if err := a.repo.AddDraft(draft); err != nil {
				return outputError(err)
			}
			return outputJSON(draft)
		},
	}
}

// chatCmd creates the chat command.
func chatCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Ask the advisor about a professor (streams the reply)",
		ArgsUsage: "<professor-id> <message>",
		Action: func(c *cli.Context) error {
			id := c.Args().First()
			p := a.repo.Professor(id)
			if p == nil {
				return outputError(errors.NewNotFound("professor", id))
			}
			message := strings.TrimSpace(strings.Join(c.Args().Slice()[1:], " "))
			if message == "" {
				return outputError(errors.NewInvalidRequest("message is required"))
			}

			history := make([]oracle.HistoryMessage, 0)
			for _, m := range a.repo.ChatsByProfessor(id) {
				history = append(history, oracle.HistoryMessage{Role: m.Role, Content: m.Content})
			}

			full, err := a.ai.Chat(c.Context, oracle.ChatRequest{
				Message:   message,
				Professor: *p,
				Profile:   a.repo.Profile(),
				Memory:    contextMemory(a),
				History:   history,
			}, func(fragment string) {
				fmt.Print(fragment)
			})
			if err != nil {
				return outputError(err)
			}
			fmt.Println()

			now := outreach.Now()
			if err := a.repo.AddChat(outreach.ChatMessage{
				ID: outreach.NewID(), ProfessorID: id,
				Role: outreach.RoleUser, Content: message, CreatedAt: now,
			}); err != nil {
				return outputError(err)
			}
			if err := a.repo.AddChat(outreach.ChatMessage{
				ID: outreach.NewID(), ProfessorID: id,
				Role: outreach.RoleAssistant, Content: full, CreatedAt: outreach.Now(),
			}); err != nil {
				return outputError(err)
			}

			for _, content := range a.ai.ExtractMemories(c.Context, message, full, p.Name) {
				item := outreach.MemoryItem{
					ID:        outreach.NewID(),
					Content:   content,
					Source:    "chat:" + id,
					Tags:      []string{p.Name},
					CreatedAt: outreach.Now(),
				}
				if err := a.repo.AddMemory(item); err != nil {
					return outputError(err)
				}
			}
			return nil
		},
	}
}

// exportCmd creates the export command.
func exportCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Export all data to a JSON backup file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.profreach/exports/profreach-backup-<date>.json)"},
		},
		Action: func(c *cli.Context) error {
			output, err := backup.WriteFile(c.Context, a.repo, a.exportsDir, c.String("path"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// importCmd creates the import command.
func importCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Replace all data from a JSON backup file",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Required: true, Usage: "Backup file path"},
		},
		Action: func(c *cli.Context) error {
			output, err := backup.ReadFile(c.Context, a.repo, c.String("path"))
			if err != nil {
				return outputError(err)
			}
			return outputJSON(output)
		},
	}
}

// keyCmd creates the key command.
func keyCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "key",
		Usage: "Manage the stored Gemini API key",
		Subcommands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Store an API key",
				ArgsUsage: "<key>",
				Action: func(c *cli.Context) error {
					key := strings.TrimSpace(c.Args().First())
					if key == "" {
						return outputError(errors.NewInvalidRequest("key is required"))
					}
					if err := a.repo.SetAPIKey(key); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"stored": true})
				},
			},
			{
				Name:  "clear",
				Usage: "Remove the stored API key",
				Action: func(c *cli.Context) error {
					if err := a.repo.SetAPIKey(""); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]any{"cleared": true})
				},
			},
			{
				Name:  "status",
				Usage: "Report whether a key is configured",
				Action: func(c *cli.Context) error {
					stored := a.repo.APIKey() != ""
					env := os.Getenv("GEMINI_API_KEY") != ""
					return outputJSON(map[string]any{"stored": stored, "env": env})
				},
			},
		},
	}
}

// serveCmd creates the serve command.
func serveCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the local web API",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "port", Usage: "Listen port (overrides config)"},
		},
		Action: func(c *cli.Context) error {
			if c.IsSet("port") {
				a.cfg.WebPort = c.Int("port")
			}

			watcher, err := kvstore.NewWatcher(a.kvDir, a.bus, a.log)
			if err != nil {
				a.log.Warn("storage watcher unavailable", zap.Error(err))
			} else {
				defer watcher.Close()
			}

			srv := web.NewServer(a.repo, a.ai, a.cfg, a.log)
			return web.Run(srv, a.log)
		},
	}
}

// Helper functions

// contextMemory converts stored memory items into prompt context.
func contextMemory(a *app) []oracle.ContextMemory {
	items := a.repo.Memory()
	out := make([]oracle.ContextMemory, 0, len(items))
	for _, m := range items {
		out = append(out, oracle.ContextMemory{Content: m.Content})
	}
	return out
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if appErr, ok := err.(*errors.Error); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", appErr.Code, appErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// readStdin reads all content from stdin.
func readStdin() (string, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// splitList splits a comma-separated string into a trimmed slice.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
