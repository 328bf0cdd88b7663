package mcpserver

// RecordFormatsURI identifies the record formats resource.
const RecordFormatsURI = "assistant://record-formats"

// RecordFormats describes the value formats the tools accept and return.
const RecordFormats = `# Assistant Record Formats

## Dates

- Days are written ` + "`" + `DD-MM-YYYY` + "`" + `, for example ` + "`" + `05-03-2024` + "`" + ` for 5 March 2024.
- Note timestamps are ` + "`" + `DD-MM-YYYY HH:MM:SS` + "`" + ` and are set by the server on create and edit.
- Date ranges (` + "`" + `finance_report` + "`" + `) include both ends.

## Amounts

- Finance amounts are signed decimals sent as strings: ` + "`" + `1200` + "`" + `, ` + "`" + `-40.50` + "`" + `.
- Positive amounts are income, negative amounts are expenses.
- Reports return exact decimal strings plus a ` + "`" + `formatted` + "`" + ` block rendered in the
  configured currency.

## Task priorities

- ` + "`" + `High` + "`" + `, ` + "`" + `Medium` + "`" + ` or ` + "`" + `Low` + "`" + ` (any case). ` + "`" + `1` + "`" + `, ` + "`" + `2` + "`" + ` and ` + "`" + `3` + "`" + ` are accepted as shortcuts.

## Identifiers

- Notes, tasks and finance records have numeric ids assigned by the server.
- Contacts are addressed by exact name or exact phone; the first match wins.

## Calculator

- One binary operation only: ` + "`" + `a+b` + "`" + `, ` + "`" + `a-b` + "`" + `, ` + "`" + `a*b` + "`" + `, ` + "`" + `a/b` + "`" + `.
- ` + "`" + `2+2*2` + "`" + ` and a negative first operand are rejected.
`
