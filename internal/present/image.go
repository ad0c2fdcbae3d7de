package present

import (
	"bytes"
	"context"
	"html/template"

	"go.uber.org/zap"

	"musicbot/internal/i18n"
	"musicbot/pkg/musicsearch"
)

var tableTemplate = template.Must(template.New("table").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  body { margin: 0; }
  .sheet {
    display: inline-block;
    color: #ffffff;
    background: #333333;
    padding: 1rem;
    font-family: "Noto Sans CJK SC", "Microsoft YaHei", sans-serif;
  }
  th, td { padding: 0.25rem 0.5rem; text-align: left; }
  .index, .title { text-align: center; }
</style>
</head>
<body>
<div class="sheet">
  <p>{{.Header}}</p>
  <table>
    <tr>
      <th class="index">{{.IndexLabel}}</th>
      <th class="title">{{.TitleLabel}}</th>
      <th>{{.ArtistLabel}}</th>
    </tr>
    {{- range .Rows}}
    <tr>
      <td class="index">{{.Index}}</td>
      <td>{{.Title}}</td>
      <td>{{.Artist}}</td>
    </tr>
    {{- end}}
  </table>
  {{- if .Footer}}
  <p>{{.Footer}}</p>
  {{- end}}
</div>
</body>
</html>
`))

type tableRow struct {
	Index  int
	Title  string
	Artist string
}

type tableData struct {
	Header      string
	IndexLabel  string
	TitleLabel  string
	ArtistLabel string
	Rows        []tableRow
	Footer      string
}

// TableHTML builds the styled candidate table document.
func TableHTML(candidates []musicsearch.Candidate, localizer *i18n.Localizer, generator string) (string, error) {
	data := tableData{
		Header:      localizer.T("list.header"),
		IndexLabel:  localizer.T("list.column_index"),
		TitleLabel:  localizer.T("list.column_title"),
		ArtistLabel: localizer.T("list.column_artist"),
		Rows:        make([]tableRow, 0, len(candidates)),
	}
	if generator != "" {
		data.Footer = localizer.T("list.footer", generator)
	}
	for i, c := range candidates {
		data.Rows = append(data.Rows, tableRow{
			Index:  i + 1,
			Title:  c.Title,
			Artist: Truncate(c.Artist, ImageArtistLimit),
		})
	}

	var buf bytes.Buffer
	if err := tableTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// ImageOption configures an ImagePresenter.
type ImageOption func(*ImagePresenter)

// WithGenerator sets the footer generator line, e.g. "musicbot v1.0.0".
func WithGenerator(generator string) ImageOption {
	return func(p *ImagePresenter) {
		p.generator = generator
	}
}

// WithFallbackHook registers a callback invoked whenever the image path falls back to text.
func WithFallbackHook(hook func(reason string)) ImageOption {
	return func(p *ImagePresenter) {
		p.onFallback = hook
	}
}

// ImagePresenter renders the candidate table through a Renderer and degrades to
// its fallback presenter when rendering is not possible.
type ImagePresenter struct {
	renderer   Renderer
	fallback   Presenter
	localizer  *i18n.Localizer
	logger     *zap.Logger
	generator  string
	onFallback func(reason string)
}

// NewImagePresenter creates the rich table strategy.
func NewImagePresenter(
	renderer Renderer,
	fallback Presenter,
	localizer *i18n.Localizer,
	logger *zap.Logger,
	opts ...ImageOption,
) *ImagePresenter {
	p := &ImagePresenter{
		renderer:  renderer,
		fallback:  fallback,
		localizer: localizer,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Present renders the table image, or the fallback listing if that fails.
func (p *ImagePresenter) Present(ctx context.Context, candidates []musicsearch.Candidate) Listing {
	if !p.renderer.Available() {
		return p.degrade(ctx, candidates, "unavailable", nil)
	}

	html, err := TableHTML(candidates, p.localizer, p.generator)
	if err != nil {
		return p.degrade(ctx, candidates, "template", err)
	}

	image, err := p.renderer.Render(ctx, html)
	if err != nil {
		return p.degrade(ctx, candidates, "render", err)
	}

	return Listing{
		Image:   image,
		Caption: p.localizer.T("list.image_caption"),
	}
}

func (p *ImagePresenter) degrade(ctx context.Context, candidates []musicsearch.Candidate, reason string, err error) Listing {
	if err != nil {
		p.logger.Warn("Falling back to text list", zap.String("reason", reason), zap.Error(err))
	} else {
		p.logger.Debug("Falling back to text list", zap.String("reason", reason))
	}
	if p.onFallback != nil {
		p.onFallback(reason)
	}
	return p.fallback.Present(ctx, candidates)
}
