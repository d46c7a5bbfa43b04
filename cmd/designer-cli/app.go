package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hypernova-labs/invoice-designer/internal/config"
	"github.com/hypernova-labs/invoice-designer/internal/database"
	"github.com/hypernova-labs/invoice-designer/internal/models"
	"github.com/hypernova-labs/invoice-designer/internal/services"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

// designer agrupa los servicios que usan los comandos
type designer struct {
	logger   *logrus.Logger
	storage  database.KeyValueStore
	registry *services.TemplateRegistry
	store    *services.CustomizationStore
	presets  *services.PresetStore
	currency string
}

// open carga la configuración y el estado persistido
func (d *designer) open(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	if path := c.String("storage-path"); path != "" {
		cfg.Storage.Type = config.StorageTypeFile
		cfg.Storage.Path = path
	}

	level, err := logrus.ParseLevel(c.String("log-level"))
	if err != nil {
		level = logrus.WarnLevel
	}
	d.logger.SetLevel(level)

	storage, err := database.OpenStore(cfg, d.logger)
	if err != nil {
		return fmt.Errorf("error opening designer storage: %w", err)
	}

	notifier := services.NewLogNotifier(d.logger)

	d.storage = storage
	d.currency = cfg.Designer.Currency
	d.registry = services.NewTemplateRegistry()
	d.store = services.NewCustomizationStore(storage, d.registry, notifier, cfg.Storage.KeyPrefix, d.logger)
	d.presets = services.NewPresetStore(storage, d.store, notifier, cfg.Storage.KeyPrefix, d.logger)

	d.store.Initialize(c.Context)
	d.presets.Initialize(c.Context)
	return nil
}

func (d *designer) close(*cli.Context) error {
	if d.storage == nil {
		return nil
	}
	return d.storage.Close()
}

func newApp(logger *logrus.Logger) *cli.App {
	d := &designer{logger: logger}

	return &cli.App{
		Name:  "designer-cli",
		Usage: "Customize and render invoice templates from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "storage-path",
				Usage:   "directory of the file store (overrides STORAGE_TYPE/STORAGE_PATH)",
				EnvVars: []string{"DESIGNER_CLI_STORAGE_PATH"},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: "warn",
				Usage: "logrus level",
			},
		},
		Before: d.open,
		After:  d.close,
		Commands: []*cli.Command{
			{
				Name:  "templates",
				Usage: "list the template catalog",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "category", Usage: "modern, minimal, professional, creative or bold"},
				},
				Action: d.listTemplates,
			},
			{
				Name:   "show",
				Usage:  "print the active template and customization",
				Action: d.show,
			},
			{
				Name:      "set",
				Usage:     "apply a partial update to one customization section",
				ArgsUsage: "<section> <json>",
				Action:    d.set,
			},
			{
				Name:   "reset",
				Usage:  "restore the default customization, keeping the template",
				Action: d.reset,
			},
			{
				Name:      "select",
				Usage:     "select the active template",
				ArgsUsage: "<template-id>",
				Action:    d.selectTemplate,
			},
			{
				Name:  "presets",
				Usage: "manage saved presets",
				Subcommands: []*cli.Command{
					{Name: "list", Usage: "list saved presets", Action: d.listPresets},
					{Name: "save", Usage: "save the active customization", ArgsUsage: "<name>", Action: d.savePreset},
					{Name: "load", Usage: "make a preset the active customization", ArgsUsage: "<id>", Action: d.loadPreset},
					{Name: "delete", Usage: "delete a preset", ArgsUsage: "<id>", Action: d.deletePreset},
				},
			},
			{
				Name:  "render",
				Usage: "render the active template",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Value: "html", Usage: "html, pdf or json"},
					&cli.StringFlag{Name: "zoom", Value: string(models.Zoom100), Usage: "50, 75, 100, fit or fill (html and json only)"},
					&cli.StringFlag{Name: "draft", Usage: "JSON file with the invoice being edited"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default stdout)"},
				},
				Action: d.render,
			},
		},
	}
}

func (d *designer) listTemplates(c *cli.Context) error {
	templates := d.registry.All()
	if category := c.String("category"); category != "" {
		if !models.TemplateCategory(category).Valid() {
			return cli.Exit(fmt.Sprintf("unknown category %q", category), 2)
		}
		templates = d.registry.ByCategory(models.TemplateCategory(category))
	}

	w := c.App.Writer
	for _, tpl := range templates {
		premium := ""
		if tpl.IsPremium {
			premium = " (premium)"
		}
		fmt.Fprintf(w, "%-24s %-13s %s%s\n", tpl.ID, tpl.Category, tpl.Name, premium)
	}
	return nil
}

func (d *designer) show(c *cli.Context) error {
	return writeJSON(c.App.Writer, d.store.Snapshot())
}

func (d *designer) set(c *cli.Context) error {
	if c.Args().Len() != 2 {
		return cli.Exit("usage: set <section> <json>", 2)
	}

	patch, err := models.DecodePatch(c.Args().Get(0), []byte(c.Args().Get(1)))
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	if details := patch.Validate(); len(details) > 0 {
		return cli.Exit(formatDetails(details), 2)
	}

	state, err := d.store.Update(c.Context, patch)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, state)
}

func (d *designer) reset(c *cli.Context) error {
	state, err := d.store.Reset(c.Context)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, state)
}

func (d *designer) selectTemplate(c *cli.Context) error {
	id := c.Args().First()
	if id == "" {
		return cli.Exit("usage: select <template-id>", 2)
	}
	if _, ok := d.registry.Get(id); !ok {
		return cli.Exit(fmt.Sprintf("unknown template %q", id), 2)
	}

	state, err := d.store.SelectTemplate(c.Context, id)
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, state)
}

func (d *designer) listPresets(c *cli.Context) error {
	w := c.App.Writer
	for _, p := range d.presets.List() {
		fmt.Fprintf(w, "%s  %-24s %-24s %s\n", p.ID, p.Name, p.TemplateID, p.LastModified.Format("2006-01-02 15:04"))
	}
	return nil
}

func (d *designer) savePreset(c *cli.Context) error {
	preset, err := d.presets.Save(c.Context, strings.Join(c.Args().Slice(), " "))
	if err != nil {
		if errors.Is(err, services.ErrPresetNameRequired) {
			return cli.Exit("usage: presets save <name>", 2)
		}
		return err
	}
	return writeJSON(c.App.Writer, preset)
}

func (d *designer) loadPreset(c *cli.Context) error {
	found, err := d.presets.Load(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	if !found {
		return cli.Exit(fmt.Sprintf("preset %q not found", c.Args().First()), 1)
	}
	return writeJSON(c.App.Writer, d.store.Snapshot())
}

func (d *designer) deletePreset(c *cli.Context) error {
	found, err := d.presets.Delete(c.Context, c.Args().First())
	if err != nil {
		return err
	}
	if !found {
		return cli.Exit(fmt.Sprintf("preset %q not found", c.Args().First()), 1)
	}
	return nil
}

func (d *designer) render(c *cli.Context) error {
	html, err := services.NewHTMLRenderer()
	if err != nil {
		return err
	}

	viewport, err := services.NewPreviewViewport(
		d.store,
		services.NewTemplateRenderer(d.registry),
		services.NewInvoiceAdapter(d.currency),
		html,
		services.NewDocumentGenerator(d.logger),
		models.ZoomLevel(c.String("zoom")),
		d.logger,
	)
	if err != nil {
		return cli.Exit(err.Error(), 2)
	}
	defer viewport.Close()

	if path := c.String("draft"); path != "" {
		draft, err := readDraft(path)
		if err != nil {
			return err
		}
		viewport.SetDraft(draft)
	}

	var buf bytes.Buffer
	switch c.String("format") {
	case "html":
		err = viewport.WritePreviewHTML(&buf)
	case "json":
		err = writeJSON(&buf, viewport.Frame())
	case "pdf":
		var data []byte
		data, _, err = viewport.ExportPDF()
		buf.Write(data)
	default:
		return cli.Exit(fmt.Sprintf("unknown format %q", c.String("format")), 2)
	}
	if err != nil {
		return err
	}

	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return fmt.Errorf("error writing %s: %w", out, err)
		}
		d.logger.WithField("file", out).Info("Invoice rendered")
		return nil
	}

	_, err = c.App.Writer.Write(buf.Bytes())
	return err
}

func readDraft(path string) (*models.InvoiceDraft, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading draft: %w", err)
	}

	var draft models.InvoiceDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("error decoding draft %s: %w", path, err)
	}
	return &draft, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func formatDetails(details []models.ErrorDetail) string {
	parts := make([]string, 0, len(details))
	for _, d := range details {
		parts = append(parts, d.Field+": "+d.Issue)
	}
	return strings.Join(parts, "; ")
}
