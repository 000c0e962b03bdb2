package sendplansummary

import (
	"bytes"
	htmltemplate "html/template"
	"strconv"
	"strings"
	"text/template"
)

var funcs = map[string]interface{}{
	"kcal":  func(v float64) string { return formatFloat(v, 0) },
	"grams": func(v float64) string { return formatFloat(v, 1) },
	"title": func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

const subjectTmpl = `Your BulkBuddy meal plan{{if .PlanName}}: {{.PlanName}}{{end}}`

const textTmpl = `Here is your meal plan{{if .PlanName}} "{{.PlanName}}"{{end}}.

Target: {{kcal .TargetCalories}} kcal
Planned: {{kcal .Nutrition.Totals.Calories}} kcal
Protein {{grams .Nutrition.Totals.Protein}} g ({{.Nutrition.Macros.ProteinPercent}}%)
Carbs {{grams .Nutrition.Totals.Carbs}} g ({{.Nutrition.Macros.CarbsPercent}}%)
Fat {{grams .Nutrition.Totals.Fat}} g ({{.Nutrition.Macros.FatPercent}}%)
{{range .Items}}
- {{title .Slot}}: {{.RecipeID}}{{if .ServingGrams}} ({{grams .ServingGrams}} g){{end}}{{end}}
`

const htmlTmpl = `<h2>Your meal plan{{if .PlanName}}: {{.PlanName}}{{end}}</h2>
<p>Target <b>{{kcal .TargetCalories}} kcal</b>, planned <b>{{kcal .Nutrition.Totals.Calories}} kcal</b></p>
<table>
<tr><td>Protein</td><td>{{grams .Nutrition.Totals.Protein}} g</td><td>{{.Nutrition.Macros.ProteinPercent}}%</td></tr>
<tr><td>Carbs</td><td>{{grams .Nutrition.Totals.Carbs}} g</td><td>{{.Nutrition.Macros.CarbsPercent}}%</td></tr>
<tr><td>Fat</td><td>{{grams .Nutrition.Totals.Fat}} g</td><td>{{.Nutrition.Macros.FatPercent}}%</td></tr>
</table>
{{if .Items}}<ul>{{range .Items}}<li>{{title .Slot}}: {{.RecipeID}}</li>{{end}}</ul>{{end}}
`

const smsTmpl = `BulkBuddy: {{if .PlanName}}{{.PlanName}}, {{end}}{{kcal .Nutrition.Totals.Calories}} of {{kcal .TargetCalories}} kcal. P {{grams .Nutrition.Totals.Protein}}g C {{grams .Nutrition.Totals.Carbs}}g F {{grams .Nutrition.Totals.Fat}}g`

var (
	subjectTemplate = template.Must(template.New("subject").Funcs(funcs).Parse(subjectTmpl))
	textTemplate    = template.Must(template.New("text").Funcs(funcs).Parse(textTmpl))
	smsTemplate     = template.Must(template.New("sms").Funcs(funcs).Parse(smsTmpl))
	htmlTemplate    = htmltemplate.Must(htmltemplate.New("html").Funcs(htmltemplate.FuncMap(funcs)).Parse(htmlTmpl))
)

type rendered struct {
	Subject string
	Text    string
	HTML    string
	SMS     string
}

func render(input *Input) (*rendered, error) {
	var out rendered
	var buf bytes.Buffer

	steps := []struct {
		dst  *string
		exec func() error
	}{
		{&out.Subject, func() error { return subjectTemplate.Execute(&buf, input) }},
		{&out.Text, func() error { return textTemplate.Execute(&buf, input) }},
		{&out.HTML, func() error { return htmlTemplate.Execute(&buf, input) }},
		{&out.SMS, func() error { return smsTemplate.Execute(&buf, input) }},
	}
	for _, step := range steps {
		buf.Reset()
		if err := step.exec(); err != nil {
			return nil, err
		}
		*step.dst = buf.String()
	}
	return &out, nil
}

func formatFloat(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
