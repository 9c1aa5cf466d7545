package notion

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/dvloznov/bank-ingest/internal/infra/bigquery"
)

// Property names of the Notion transactions database.
const (
	propDescription = "Description"
	propTransID     = "Trans ID"
	propDate        = "Date"
	propAmount      = "Amount"
	propAccount     = "Account"
	propCategory    = "Category"
	propType        = "Type"
)

// TransactionToProperties converts a persisted transaction row into the
// property set of the Notion transactions database. Description is the page
// title; the transaction id is kept as plain text so existing pages can be
// found again on the next sync.
func TransactionToProperties(row *bigquery.TransactionRow) notionapi.Properties {
	props := notionapi.Properties{
		propDescription: notionapi.TitleProperty{
			Title: []notionapi.RichText{richText(row.RawReason)},
		},
		propTransID: notionapi.RichTextProperty{
			RichText: []notionapi.RichText{richText(row.TransID)},
		},
		propAmount: notionapi.NumberProperty{
			Number: row.Amount,
		},
		propAccount: notionapi.SelectProperty{
			Select: notionapi.Option{Name: row.Account},
		},
		propCategory: notionapi.SelectProperty{
			Select: notionapi.Option{Name: row.Category},
		},
		propType: notionapi.SelectProperty{
			Select: notionapi.Option{Name: row.TransactionType},
		},
	}

	date := notionapi.Date(time.Date(
		row.DDate.Year,
		time.Month(row.DDate.Month),
		row.DDate.Day,
		0, 0, 0, 0, time.UTC,
	))
	props[propDate] = notionapi.DateProperty{
		Date: &notionapi.DateObject{Start: &date},
	}

	return props
}

func richText(content string) notionapi.RichText {
	return notionapi.RichText{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: content},
	}
}
