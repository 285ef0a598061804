package receipt

import (
	"context"
	"fmt"
	"html/template"
	"io"

	"github.com/atelierframes/framery/internal/orders"
)

// viewData feeds the print template. All money values arrive preformatted.
type viewData struct {
	OrderID     int64
	Date        string
	DueDate     string
	Customer    string
	Comment     string
	Total       string
	Advance     string
	Debt        string
	Rows        []Row
	FrameLabels []string
}

// RenderHTML reprices the order and writes the print receipt: a tear-off
// client part with the payment summary, then the workshop part with the
// itemized lines and the frame dimensions.
func (g *Generator) RenderHTML(ctx context.Context, order orders.Order, w io.Writer) error {
	breakdown, err := g.Reprice(ctx, order)
	if err != nil {
		return err
	}

	data := viewData{
		OrderID:     order.ID,
		Date:        order.CreatedAt.Format("02.01.2006"),
		Customer:    customerInfo(order),
		Comment:     order.Comment,
		Total:       order.TotalPrice.String(),
		Advance:     order.AdvancePayment.String(),
		Debt:        order.Debt.String(),
		Rows:        rows(order, breakdown),
		FrameLabels: frameLabels(order),
	}
	if order.FulfillmentDate != nil {
		data.DueDate = order.FulfillmentDate.Format("02.01.2006")
	} else if order.Status == orders.StatusReady || order.Status == orders.StatusIssued {
		data.DueDate = order.UpdatedAt.Format("02.01.2006")
	}

	if err := receiptTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("render receipt for order %d: %w", order.ID, err)
	}
	return nil
}

func customerInfo(order orders.Order) string {
	switch {
	case order.CustomerName != "" && order.CustomerPhone != "":
		return order.CustomerName + " " + order.CustomerPhone
	case order.CustomerName != "":
		return order.CustomerName
	case order.CustomerPhone != "":
		return order.CustomerPhone
	}
	return ""
}

// frameLabels lists every frame's printed dimensions, including mat board
// dimensions when stated.
func frameLabels(order orders.Order) []string {
	labels := make([]string, 0, len(order.Frames))
	for i, frame := range order.Frames {
		eff := frame.Size
		if !eff.Valid() {
			eff = order.Size
		}
		label := fmt.Sprintf("Frame %d: %s x %s cm", i+1, eff.W, eff.H)
		if frame.MatBoardID != 0 && frame.MatBoardLength.IsPositive() && frame.MatBoardWidth.IsPositive() {
			label += fmt.Sprintf(" | Mat board: %s x %s cm", frame.MatBoardLength, frame.MatBoardWidth)
		}
		labels = append(labels, label)
	}
	if len(labels) == 0 {
		labels = append(labels, fmt.Sprintf("Frame 1: %s x %s cm", order.Size.W, order.Size.H))
	}
	return labels
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Order receipt #{{.OrderID}}</title>
<style>
body { font-family: Arial, sans-serif; font-size: 11pt; padding: 15px; max-width: 620px; margin: 0 auto; }
table { border-collapse: collapse; width: 100%; font-size: 9pt; margin: 8px 0; }
th, td { border: 1px solid #000; padding: 4px 8px; }
th { text-align: center; font-weight: bold; }
.plain td { border: none; vertical-align: top; }
.center { text-align: center; }
.dashed { border-top: 1px dashed #000; margin: 15px 0; text-align: center; font-size: 8pt; font-style: italic; }
.total { font-weight: bold; font-size: 11pt; margin-top: 10px; text-align: right; }
.signs { display: flex; justify-content: space-between; margin-top: 30px; }
.sign-box { width: 45%; }
.frames { margin-top: 20px; padding: 6px; border: 1px solid #ddd; text-align: center; font-size: 8pt; }
@media print { body { padding: 0; } }
</style>
</head>
<body>
<table class="plain"><tr><td>
<p class="center"><b>Order receipt #{{.OrderID}} of {{.Date}}</b></p>
<p><b>Total: {{.Total}}</b></p>
<p>Advance: {{.Advance}}</p>
<p>Due: {{.Debt}}</p>
</td></tr></table>
<div class="dashed">TEAR-OFF PART</div>
<table class="plain"><tr><td>
<p class="center"><b>Order receipt #{{.OrderID}} of {{.Date}}</b></p>
{{if .DueDate}}<p class="center">Ready by: {{.DueDate}}</p>{{end}}
</td><td>
{{if .Customer}}Customer: {{.Customer}} | {{end}}Advance: {{.Advance}} | <b>Total: {{.Total}}</b>
</td></tr></table>
<p><b>Order lines:</b></p>
<table>
<tr><th></th><th>Item</th><th>Size</th><th>Consumption</th><th>Rate</th><th>Cost</th></tr>
{{range .Rows}}<tr><td>{{.Label}}</td><td>{{.Name}}</td><td>{{.Size}}</td><td>{{.Consumption}}</td><td>{{.UnitPrice}}</td><td>{{.Total}}</td></tr>
{{end}}</table>
<p class="total">Total: {{.Total}}</p>
{{if .Comment}}<p><b>Comment:</b> {{.Comment}}</p>{{end}}
<div class="signs">
<div class="sign-box"><p>Customer signature:</p><p><br></p></div>
<div class="sign-box"><p>Framer signature:</p><p><br></p></div>
</div>
<div class="frames">
<p><b>Frame dimensions</b></p>
{{range .FrameLabels}}<p>{{.}}</p>
{{end}}</div>
<script>window.onload = function() { window.print(); }</script>
</body>
</html>
`))
