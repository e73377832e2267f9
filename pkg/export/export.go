package export

// Table defines tabular export content shared by the CSV and PDF renderers.
type Table struct {
	Title   string
	Columns []string
	Rows    [][]string
}
