package sink

import (
	"bytes"
	"context"
	"html/template"
	"time"

	"github.com/matzehuels/dotring/pkg/errors"
	"github.com/matzehuels/dotring/pkg/observability"
	"github.com/matzehuels/dotring/pkg/widget"
)

// MarkupOption configures HTML rendering via [RenderMarkup].
type MarkupOption func(*markupRenderer)

type markupRenderer struct {
	ctx   context.Context
	id    string
	base  string
	page  bool
	title string
}

// WithMarkupID sets the widget identifier used by the event wiring.
func WithMarkupID(id string) MarkupOption { return func(r *markupRenderer) { r.id = id } }

// WithBasePath sets the URL prefix of the widget's API (default /api/widgets).
func WithBasePath(p string) MarkupOption { return func(r *markupRenderer) { r.base = p } }

// WithPage wraps the fragment in a complete HTML document.
func WithPage(title string) MarkupOption {
	return func(r *markupRenderer) { r.page = true; r.title = title }
}

// WithMarkupContext sets the context passed to render hooks.
func WithMarkupContext(ctx context.Context) MarkupOption {
	return func(r *markupRenderer) { r.ctx = ctx }
}

type markupData struct {
	ID      string
	API     string
	Title   string
	Managed bool
	Action  widget.Action
	Cursor  widget.Cursor
	Palette []string
	Panel   widget.Panel
	SVG     template.HTML
}

// RenderMarkup produces the widget's HTML: tools and management panels, the
// canvas region with the current drawing inlined as SVG, and the script that
// forwards pointer and drag events to the widget API.
func RenderMarkup(c *widget.Controller, opts ...MarkupOption) ([]byte, error) {
	r := markupRenderer{ctx: context.Background(), base: "/api/widgets", title: "dotring"}
	for _, opt := range opts {
		opt(&r)
	}
	if r.id == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "markup requires a widget id")
	}

	start := time.Now()
	observability.Render().OnRenderStart(r.ctx, "html", c.Len())

	data := markupData{
		ID:      r.id,
		API:     r.base + "/" + r.id,
		Title:   r.title,
		Managed: c.Variant() == widget.VariantManaged,
		Action:  c.Action(),
		Cursor:  c.Cursor(),
		Palette: c.Options().Palette,
		Panel:   c.Panel(),
		SVG:     template.HTML(RenderSVG(c, WithFragment(), WithSVGContext(r.ctx))),
	}

	tmpl := "fragment"
	if r.page {
		tmpl = "page"
	}
	var buf bytes.Buffer
	err := markupTmpl.ExecuteTemplate(&buf, tmpl, data)
	if err != nil {
		err = errors.Wrap(errors.ErrCodeInternal, err, "render markup")
	}
	observability.Render().OnRenderComplete(r.ctx, "html", buf.Len(), time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var markupTmpl = template.Must(template.New("markup").Parse(`
{{- define "page" -}}
<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>{{.Title}}</title>
    <style>
      body { font-family: Arial, 'Helvetica Neue', Helvetica, sans-serif; margin: 24px; color: #222; }
      .canvas-container { display: flex; gap: 24px; align-items: flex-start; position: relative; }
      .tools-panel, .dots-panel, .dot-management-panel { min-width: 180px; padding: 12px; border: 1px solid #ddd; border-radius: 6px; }
      .tools-panel h3, .dots-panel h3, .dot-management-panel h3 { margin: 0 0 8px; font-size: 15px; }
      .dot { display: inline-block; width: 18px; height: 18px; margin: 4px; border-radius: 50%; color: transparent; cursor: grab; }
      .dot-management-panel select, .dot-management-panel button, .action-dropdown { display: block; width: 100%; margin-top: 8px; }
      .canvas-wrapper { position: relative; }
      .circle-tooltip { position: absolute; padding: 2px 6px; font-size: 12px; background: #111; color: #fff; border-radius: 3px; pointer-events: none; }
      [hidden] { display: none !important; }
    </style>
  </head>
  <body>
{{template "fragment" .}}
  </body>
</html>
{{end -}}

{{- define "fragment" -}}
<div class="canvas-container dotring" id="dotring-{{.ID}}" data-api="{{.API}}" data-managed="{{.Managed}}">
  {{- if .Managed}}
  <div class="tools-panel">
    <h3>Tools</h3>
    <select class="action-dropdown" data-role="action">
      <option value="add"{{if eq .Action "add"}} selected{{end}}>Add a dot</option>
      <option value="remove"{{if eq .Action "remove"}} selected{{end}}>Remove a dot</option>
    </select>
  </div>
  {{- end}}
  <div class="dots-panel">
    <h3>Drag Dots to Circle</h3>
    {{- range $i, $c := .Palette}}
    <div class="dot" draggable="true" id="dot{{$i}}" data-color="{{$c}}">•</div>
    {{- end}}
  </div>
  <div class="dot-management-panel" data-role="panel"{{if not .Panel.Visible}} hidden{{end}}>
    <h3>Dot Management</h3>
    <div data-role="count">{{.Panel.CountText}}</div>
    {{- if .Managed}}
    <select data-role="selector"{{if not .Panel.SelectorVisible}} hidden{{end}}>
      <option value="">Select a dot to remove</option>
      {{- range .Panel.Options}}
      <option value="{{.Value}}">{{.Label}}</option>
      {{- end}}
    </select>
    {{- end}}
    <button data-role="remove-selected"{{if not .Panel.RemoveEnabled}} disabled{{end}}>{{.Panel.RemoveLabel}}</button>
    <button data-role="remove-all">Remove All Dots</button>
  </div>
  <div class="canvas-wrapper" data-role="canvas" data-cursor="{{.Cursor}}">
{{.SVG}}
    <div class="circle-tooltip" data-role="tooltip" hidden></div>
  </div>
</div>
<script>
(function () {
  const root = document.currentScript.previousElementSibling;
  const api = root.dataset.api;
  const managed = root.dataset.managed === "true";
  const canvas = root.querySelector('[data-role="canvas"]');
  const tooltip = root.querySelector('[data-role="tooltip"]');
  const panel = root.querySelector('[data-role="panel"]');
  const selector = root.querySelector('[data-role="selector"]');
  const removeSelected = root.querySelector('[data-role="remove-selected"]');
  let selected = -1;
  let busy = false;

  canvas.style.cursor = canvas.dataset.cursor;
  root.querySelectorAll('.dot[draggable]').forEach(function (el) {
    el.style.background = el.dataset.color;
    el.addEventListener("dragstart", function (e) {
      e.dataTransfer.setData("text/plain", el.id);
      e.dataTransfer.setData("color", el.dataset.color);
    });
  });

  function point(e) {
    const svg = canvas.querySelector("svg");
    const r = svg.getBoundingClientRect();
    const vb = svg.viewBox.baseVal;
    return { x: (e.clientX - r.left) * vb.width / r.width, y: (e.clientY - r.top) * vb.height / r.height };
  }

  async function call(method, path, body) {
    const init = { method: method, headers: { "Content-Type": "application/json" } };
    if (body !== undefined) init.body = JSON.stringify(body);
    const res = await fetch(api + path, init);
    if (!res.ok) return;
    await update(await res.json());
  }

  async function update(snap) {
    const svg = await fetch(api + "/svg?fragment=1").then(function (r) { return r.text(); });
    canvas.querySelector("svg").outerHTML = svg;
    canvas.style.cursor = snap.cursor;
    selected = snap.selected;

    tooltip.hidden = !snap.tooltip.visible;
    if (snap.tooltip.visible) {
      tooltip.textContent = snap.tooltip.text;
      tooltip.style.left = snap.tooltip.x + "px";
      tooltip.style.top = snap.tooltip.y + "px";
    }

    panel.hidden = !snap.panel.visible;
    panel.querySelector('[data-role="count"]').textContent = snap.panel.count_text;
    removeSelected.textContent = snap.panel.remove_label;
    removeSelected.disabled = !snap.panel.remove_enabled;
    if (selector) {
      selector.hidden = !snap.panel.selector_visible;
      selector.innerHTML = '<option value="">Select a dot to remove</option>';
      snap.panel.options.forEach(function (o) {
        const opt = document.createElement("option");
        opt.value = o.value;
        opt.textContent = o.label;
        selector.appendChild(opt);
      });
    }
  }

  function send(kind, e, payload, always) {
    if (busy && !always) return;
    busy = true;
    const p = point(e);
    call("POST", "/events", { kind: kind, x: p.x, y: p.y, payload: payload }).finally(function () { busy = false; });
  }

  canvas.addEventListener("dragover", function (e) { e.preventDefault(); send("dragover", e); });
  canvas.addEventListener("dragleave", function (e) { send("dragleave", e, undefined, true); });
  canvas.addEventListener("drop", function (e) {
    e.preventDefault();
    send("drop", e, { id: e.dataTransfer.getData("text/plain"), color: e.dataTransfer.getData("color") }, true);
  });
  canvas.addEventListener("click", function (e) { send("click", e, undefined, true); });
  canvas.addEventListener("mousedown", function (e) { send("press", e, undefined, true); });
  canvas.addEventListener("mousemove", function (e) { send("move", e); });
  canvas.addEventListener("mouseup", function (e) { send("release", e, undefined, true); });

  const action = root.querySelector('[data-role="action"]');
  if (action) {
    action.addEventListener("change", function () { call("POST", "/action", { action: action.value }); });
  }
  removeSelected.addEventListener("click", function () {
    const index = managed ? (selector ? selector.value : "") : (selected >= 0 ? String(selected) : "");
    if (index !== "") call("DELETE", "/dots/" + index);
  });
  root.querySelector('[data-role="remove-all"]').addEventListener("click", function () { call("DELETE", "/dots"); });
})();
</script>
{{end -}}
`))
