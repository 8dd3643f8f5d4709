// Package domain models the Japan Meteorological Agency (JMA) weekly weather
// forecast and the rules for turning its HTML table into weather records.
//
// # Data Source
//
// The weekly forecast page (https://www.jma.go.jp/jp/week/) renders one table
// with class "forecastlist". Every body row is one forecast region; the first
// cell carries the region name and the following cells carry one day each,
// starting with the day the page was fetched.
//
//	<table class="forecastlist">
//	  <tbody>
//	    <tr>
//	      <th class="area">東京地方</th>
//	      <td class="forecast">
//	        <img src="..." alt="晴時々曇">
//	        <span class="pop">20/30</span>
//	        <span class="maxtemp">25</span>
//	        <span class="mintemp">14.5</span>
//	      </td>
//	      ...
//	    </tr>
//	  </tbody>
//	</table>
//
// Rows without an "area" cell (headers, spacers) are skipped.
//
// # Field Conventions
//
// Condition label:
//
//	Taken from the weather icon's alt text, e.g. "曇一時雨". Missing icons yield "".
//
// Temperatures:
//
//	Degrees Celsius, usually integers, occasionally fractional. Parsed the way a
//	JavaScript Number() call would: surrounding whitespace is ignored, an empty
//	string is 0 and anything else unparsable is NaN. See [ParseNumber].
//
// Rain probability:
//
//	Percent in steps of 10. Days split into sub-periods publish "a/b"; the
//	stored value is the mean rounded to the nearest 10, half away from zero, so
//	"30/40" becomes 40 and "20/40" becomes 30. See [ParseRainyPercent].
//
// # Dates
//
// A cell's date is the fetch date plus its zero-based position in the row. The
// fetch date is taken once per run from the package clock in local time; see
// [Today] and [LocalDate.AddDays].
//
// # Persisted Schema
//
// Records are stored under country, then region name, then the date rendered
// with [DateFormatYYYYMMDD] (unpadded, e.g. "2024-3-5"). Every value field is
// text: type, highestTemp, lowestTemp, rainyPercent. See [Document].
package domain
