// Package cv2pdf turns a flat CSV table of labeled résumé records into a
// paginated two-column PDF.
//
// # Quick Start
//
// Create a converter, convert a table, and close when done:
//
//	conv, err := cv2pdf.NewConverter()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conv.Close()
//
//	result, err := conv.Convert(ctx, cv2pdf.Input{CSV: data})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("cv.pdf", result.PDF, 0644)
//
// # Input Table
//
// The table has the header section,subsection,type,content,order. Rows are
// grouped by section, then by subsection, and sorted by order (blank means
// 0). Rows whose section is empty or starts with # are comments.
//
//	section,subsection,type,content,order
//	header,nom,text,Jane Doe,1
//	header,titre,text,Engineer,2
//	experience,job1_titre,text,Lead,1
//	experience,job1_periode,text,2020-2024,2
//	experience,job1_bullet1,text,Shipped things,3
//
// Subsection keys with an underscore name a field of an entity: job1_titre
// is field "titre" of entity "job1". Entities are ordered by the order of
// their titre field; entities without one are not rendered.
//
// # Conversion Pipeline
//
//  1. Parse the CSV into sections (malformed input fails with ErrFormat)
//  2. Build a flow of styled text blocks: sidebar first, then main column
//  3. Lay the flow out on A4 pages with a dark sidebar on every page
//  4. Render the pages with the native PDF writer or headless Chrome
//
// # Configuration
//
//	conv, err := cv2pdf.NewConverter(
//	    cv2pdf.WithBackend(cv2pdf.BackendChrome),
//	    cv2pdf.WithTimeout(2 * time.Minute),
//	    cv2pdf.WithLogger(logger),
//	)
//
// # Parallel Processing
//
// A Converter serves one goroutine at a time. ConverterPool hands out
// independent converters:
//
//	pool := cv2pdf.NewConverterPool(cv2pdf.ResolvePoolSize(0))
//	defer pool.Close()
//
//	conv, err := pool.Acquire(ctx)
//	if err != nil {
//	    return err
//	}
//	defer pool.Release(conv)
//	result, err := conv.Convert(ctx, input)
package cv2pdf
