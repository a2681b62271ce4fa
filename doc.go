// Package folio tracks a personal stock portfolio: the held positions, their
// valuation and profit/loss, and the financial goals of the user.
//
// The core functionalities include:
//   - Positions: a Stock is one ticker bought at a price, in a quantity, and
//     priced at its latest quote. A Portfolio keeps tickers unique and every
//     position in a single currency.
//   - Calculations: profit/loss, market value, allocation and portfolio
//     totals are derived from positions and never stored.
//   - Goals: savings targets with progress and contribution planning.
//   - Import/export: the JSON export document shared with the web app, and
//     a CSV form for spreadsheets.
//
// Quotes, news and persistence live in the quote, news and store packages;
// the `pft` command-line tool wires them together.
package folio
