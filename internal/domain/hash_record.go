package domain

// HashRecord is the persisted unit of the mapping store: one issued token and
// the original column name it stands for.
//
// Token is unique. ColumnName is not: every anonymization call mints fresh
// tokens, so one column name accumulates many records over time.
type HashRecord struct {
	Token      string `json:"token"`
	ColumnName string `json:"column_name"`
}

// Tokens returns the tokens of records in order.
func Tokens(records []HashRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Token
	}
	return out
}
