package service

import (
	"bytes"
	"fmt"
	"html/template"

	"learnpulse_backend/internal/model"
)

// ReportService renders printable HTML progress reports from the same
// aggregates the assistant grounds on.
type ReportService struct {
	Analytics *AnalyticsService
}

func NewReportService(analytics *AnalyticsService) *ReportService {
	return &ReportService{Analytics: analytics}
}

var reportFuncs = template.FuncMap{
	"score": func(v *float64) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprintf("%.1f", *v)
	},
	"pct": func(v *float64) string {
		if v == nil {
			return "-"
		}
		return fmt.Sprintf("%.1f%%", *v*100)
	},
	"f1": func(v float64) string { return fmt.Sprintf("%.1f", v) },
}

var studentReportTmpl = template.Must(template.New("student_report").Funcs(reportFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Progress Report - {{.Stats.Student}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 40px; color: #1a202c; }
h1 { color: #2B6CB0; border-bottom: 2px solid #2B6CB0; padding-bottom: 8px; }
h2 { color: #2D3748; margin-top: 28px; }
table { border-collapse: collapse; margin-top: 8px; }
th, td { border: 1px solid #CBD5E0; padding: 6px 14px; text-align: left; }
th { background: #EDF2F7; }
.note { color: #4A5568; font-style: italic; }
</style>
</head>
<body>
<h1>Learner Progress Report: {{.Stats.Student}}</h1>
<p>Generated {{.GeneratedAt}}</p>
{{if not .Stats.Exists}}
<p class="note">No activity data found for this learner.</p>
{{else}}
<h2>Overview</h2>
<table>
<tr><th>Sessions</th><td>{{.Stats.TotalSessions}}</td></tr>
<tr><th>Average score</th><td>{{score .Stats.AverageScore}}</td></tr>
<tr><th>Median score</th><td>{{score .Stats.MedianScore}}</td></tr>
<tr><th>Best / worst</th><td>{{score .Stats.BestScore}} / {{score .Stats.WorstScore}}</td></tr>
{{if .Stats.AvgSuccessRate}}<tr><th>Avg success rate</th><td>{{pct .Stats.AvgSuccessRate}}</td></tr>{{end}}
{{if .Stats.AvgInteractionAccuracy}}<tr><th>Avg interaction accuracy</th><td>{{pct .Stats.AvgInteractionAccuracy}}</td></tr>{{end}}
{{if .Stats.MaxStreakDays}}<tr><th>Max streak days</th><td>{{.Stats.MaxStreakDays}}</td></tr>{{end}}
</table>
{{if .Stats.TrendByWeek}}
<h2>Weekly Trend</h2>
<table>
<tr><th>Week</th><th>Average score</th><th>Sessions</th></tr>
{{range .Stats.TrendByWeek}}<tr><td>W{{.WeekNumber}}</td><td>{{f1 .AvgScore}}</td><td>{{.Count}}</td></tr>
{{end}}</table>
{{end}}
{{if .Stats.ConceptBreakdown}}
<h2>Concepts (weakest first)</h2>
<table>
<tr><th>Concept</th><th>Average score</th><th>Sessions</th></tr>
{{range .Stats.ConceptBreakdown}}<tr><td>{{.Concept}}</td><td>{{f1 .AvgScore}}</td><td>{{.Sessions}}</td></tr>
{{end}}</table>
{{end}}
{{if .Stats.RecentFeedbackNotes}}
<h2>Recent Notes</h2>
<ul>
{{range .Stats.RecentFeedbackNotes}}<li class="note">{{.}}</li>
{{end}}</ul>
{{end}}
{{if .Feedback}}
<h2>Suggested Next Steps</h2>
<pre style="white-space: pre-wrap; font-family: inherit;">{{.Feedback}}</pre>
{{end}}
{{end}}
</body>
</html>
`))

var classReportTmpl = template.Must(template.New("class_report").Funcs(reportFuncs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Class Report - {{.Stats.ClassID}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 40px; color: #1a202c; }
h1 { color: #2B6CB0; border-bottom: 2px solid #2B6CB0; padding-bottom: 8px; }
h2 { color: #2D3748; margin-top: 28px; }
table { border-collapse: collapse; margin-top: 8px; }
th, td { border: 1px solid #CBD5E0; padding: 6px 14px; text-align: left; }
th { background: #EDF2F7; }
.note { color: #4A5568; font-style: italic; }
</style>
</head>
<body>
<h1>Class Report: {{.Stats.ClassID}}</h1>
<p>Generated {{.GeneratedAt}}</p>
{{if not .Stats.Exists}}
<p class="note">No activity data found for this class.</p>
{{else}}
<h2>Overview</h2>
<table>
<tr><th>Learners</th><td>{{.Stats.TotalStudents}}</td></tr>
<tr><th>Sessions</th><td>{{.Stats.TotalSessions}}</td></tr>
<tr><th>Average score</th><td>{{score .Stats.AverageScore}}</td></tr>
</table>
{{if .Stats.TrendByWeek}}
<h2>Weekly Trend</h2>
<table>
<tr><th>Week</th><th>Average score</th><th>Sessions</th></tr>
{{range .Stats.TrendByWeek}}<tr><td>W{{.WeekNumber}}</td><td>{{f1 .AvgScore}}</td><td>{{.Count}}</td></tr>
{{end}}</table>
{{end}}
{{if .Stats.ConceptBreakdown}}
<h2>Concepts (weakest first)</h2>
<table>
<tr><th>Concept</th><th>Average score</th><th>Sessions</th></tr>
{{range .Stats.ConceptBreakdown}}<tr><td>{{.Concept}}</td><td>{{f1 .AvgScore}}</td><td>{{.Sessions}}</td></tr>
{{end}}</table>
{{end}}
{{end}}
</body>
</html>
`))

type studentReportData struct {
	Stats       model.StudentStats
	Feedback    string
	GeneratedAt string
}

type classReportData struct {
	Stats       model.ClassStats
	GeneratedAt string
}

// StudentReportHTML renders the full single-learner report.
func (s *ReportService) StudentReportHTML(name, generatedAt string) ([]byte, error) {
	stats, err := s.Analytics.StudentStats(name, 0)
	if err != nil {
		return nil, err
	}
	feedback, err := s.Analytics.IndividualizedFeedback(name)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := studentReportTmpl.Execute(&buf, studentReportData{
		Stats:       stats,
		Feedback:    feedback,
		GeneratedAt: generatedAt,
	}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ClassReportHTML renders the class-level report.
func (s *ReportService) ClassReportHTML(classID, generatedAt string) ([]byte, error) {
	stats, err := s.Analytics.ClassStats(classID, 0)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := classReportTmpl.Execute(&buf, classReportData{
		Stats:       stats,
		GeneratedAt: generatedAt,
	}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
