// Package printing renders printable documents as PDF with maroto.
//
// This package contains:
// - VoucherRenderer, which lays out a journal entry as an A4 voucher
// - RenderError, which wraps layout and generation failures
//
// Example usage:
//
//	renderer := printing.NewVoucherRenderer(printing.WithCompanyName("ACME Ltd"))
//	journalService.SetVoucherRenderer(renderer)
//
//	pdf, err := renderer.RenderVoucher(entry)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Generated PDF: %d bytes\n", len(pdf))
package printing
