package printing

import (
	"fmt"
	"time"

	financeapp "github.com/erp/backoffice/internal/application/finance"
	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorVoid    = &props.Color{Red: 180, Green: 30, Blue: 30}
	colorHeader  = &props.Color{Red: 230, Green: 236, Blue: 242}
)

const dateLayout = "2006-01-02"

var _ financeapp.VoucherRenderer = (*VoucherRenderer)(nil)

// VoucherRenderer lays out journal entries as A4 accounting vouchers
type VoucherRenderer struct {
	companyName string
	now         func() time.Time
}

// VoucherOption configures a VoucherRenderer
type VoucherOption func(*VoucherRenderer)

// WithCompanyName prints name in the voucher heading and PDF metadata
func WithCompanyName(name string) VoucherOption {
	return func(r *VoucherRenderer) {
		r.companyName = name
	}
}

// WithClock overrides the time printed in the footer
func WithClock(now func() time.Time) VoucherOption {
	return func(r *VoucherRenderer) {
		if now != nil {
			r.now = now
		}
	}
}

// NewVoucherRenderer creates a renderer
func NewVoucherRenderer(opts ...VoucherOption) *VoucherRenderer {
	r := &VoucherRenderer{
		companyName: "Backoffice",
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RenderVoucher returns the PDF bytes of entry
func (r *VoucherRenderer) RenderVoucher(entry financeapp.JournalEntryResponse) ([]byte, error) {
	if entry.EntryNumber == "" {
		return nil, NewRenderError(ErrCodeInvalidInput, "entry number is required", nil)
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(12).WithRightMargin(12).
		WithTopMargin(12).WithBottomMargin(12).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Journal voucher "+entry.EntryNumber, true).
		WithAuthor(r.companyName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(r.headingRow(entry))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(detailRows(entry)...)
	m.AddRows(line.NewRow(2))
	m.AddRows(tableHeaderRow())
	for _, l := range entry.Lines {
		m.AddRows(lineRow(l))
	}
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalsRow(entry))
	m.AddRows(line.NewRow(8))
	m.AddRows(signatureRow())
	m.AddRows(r.footerRow())

	doc, err := m.Generate()
	if err != nil {
		return nil, NewRenderError(ErrCodeRenderFailed, fmt.Sprintf("failed to render voucher %s", entry.EntryNumber), err)
	}
	return doc.GetBytes(), nil
}

func (r *VoucherRenderer) headingRow(entry financeapp.JournalEntryResponse) core.Row {
	statusColor := colorGray
	if entry.Status == "VOID" {
		statusColor = colorVoid
	}
	return row.New(18).Add(
		col.New(7).Add(
			text.New(r.companyName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("JOURNAL VOUCHER", props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(entry.EntryNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 1,
			}),
			text.New("Date: "+entry.EntryDate.Format(dateLayout), props.Text{
				Size: 8, Align: align.Right, Top: 8, Color: colorGray,
			}),
			text.New(entry.Status, props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Top: 13, Color: statusColor,
			}),
		),
	)
}

func detailRows(entry financeapp.JournalEntryResponse) []core.Row {
	rows := []core.Row{
		labeledRow("Description", entry.Description),
	}
	if entry.Reference != "" {
		rows = append(rows, labeledRow("Reference", entry.Reference))
	}
	if entry.SourceType != "" {
		rows = append(rows, labeledRow("Source", entry.SourceType))
	}
	if entry.PostedAt != nil {
		rows = append(rows, labeledRow("Posted", entry.PostedAt.Format(time.RFC3339)))
	}
	if entry.VoidedAt != nil {
		rows = append(rows, labeledRow("Voided", entry.VoidedAt.Format(time.RFC3339)))
	}
	return rows
}

func labeledRow(label, value string) core.Row {
	return row.New(6).Add(
		col.New(2).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Color: colorGray, Top: 1})),
		col.New(10).Add(text.New(value, props.Text{Size: 9, Top: 1})),
	)
}

func tableHeaderRow() core.Row {
	bold := props.Text{Style: fontstyle.Bold, Size: 8, Top: 1.5, Color: colorPrimary}
	right := bold
	right.Align = align.Right
	return row.New(7).WithStyle(&props.Cell{BackgroundColor: colorHeader}).Add(
		col.New(1).Add(text.New("#", bold)),
		col.New(2).Add(text.New("Account", bold)),
		col.New(3).Add(text.New("Name", bold)),
		col.New(2).Add(text.New("Memo", bold)),
		col.New(2).Add(text.New("Debit", right)),
		col.New(2).Add(text.New("Credit", right)),
	)
}

func lineRow(l financeapp.JournalLineResponse) core.Row {
	cell := props.Text{Size: 8, Top: 1.5}
	amount := props.Text{Size: 8, Top: 1.5, Align: align.Right}
	return row.New(6).Add(
		col.New(1).Add(text.New(fmt.Sprintf("%d", l.LineNo), cell)),
		col.New(2).Add(text.New(l.AccountCode, cell)),
		col.New(3).Add(text.New(l.AccountName, cell)),
		col.New(2).Add(text.New(l.Memo, cell)),
		col.New(2).Add(text.New(formatAmount(l.Debit), amount)),
		col.New(2).Add(text.New(formatAmount(l.Credit), amount)),
	)
}

func totalsRow(entry financeapp.JournalEntryResponse) core.Row {
	bold := props.Text{Style: fontstyle.Bold, Size: 9, Top: 1.5, Align: align.Right}
	return row.New(8).Add(
		col.New(8).Add(text.New("Total", bold)),
		col.New(2).Add(text.New(entry.TotalDebit.StringFixed(2), bold)),
		col.New(2).Add(text.New(entry.TotalCredit.StringFixed(2), bold)),
	)
}

func signatureRow() core.Row {
	label := props.Text{Size: 8, Top: 6, Color: colorGray}
	return row.New(12).Add(
		col.New(4).Add(text.New("Prepared by: ____________", label)),
		col.New(4).Add(text.New("Reviewed by: ____________", label)),
		col.New(4).Add(text.New("Approved by: ____________", label)),
	)
}

func (r *VoucherRenderer) footerRow() core.Row {
	return row.New(6).Add(
		col.New(12).Add(text.New("Printed "+r.now().Format(time.RFC3339), props.Text{
			Size: 7, Align: align.Right, Color: colorGray, Top: 2,
		})),
	)
}

func formatAmount(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(2)
}
