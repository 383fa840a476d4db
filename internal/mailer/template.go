package mailer

import "html/template"

type templateData struct {
	ContactID   string
	FormTitle   string
	AgentName   string
	Evaluator   string
	SubmittedAt string
	ContactURL  template.URL
}

var messageTemplate = template.Must(template.New("evaluation").Parse(`<html>
<head>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 800px; margin: 0 auto; padding: 20px; }
.header { background-color: #f8f9fa; padding: 20px; margin-bottom: 20px; text-align: center; }
.metadata { color: #000000; font-size: 0.9em; text-align: left; }
.button { background-color: #007bff; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block; margin-top: 15px; }
.agent-name { color: #004085; font-weight: bold; font-size: 1.1em; }
</style>
</head>
<body>
<div class="container">
  <div class="header">
    <h2>Evaluation Form</h2>
  </div>
  <div class="content">
    <p>An evaluation has been completed and requires your review.</p>
    <div class="metadata">
      <p><strong>Details:</strong></p>
      <ul>
        <li>Contact ID: {{.ContactID}}</li>
        <li>Evaluation Form: {{.FormTitle}}</li>
        <li>Evaluated Agent: <span class="agent-name">{{.AgentName}}</span></li>
        <li>Submitted by: {{.Evaluator}}</li>
        <li>Submission Date: {{.SubmittedAt}}</li>
      </ul>
    </div>
    <p style="text-align: center;">
      <a href="{{.ContactURL}}" class="button">View Contact Details</a>
    </p>
    <p style="margin-top: 30px; font-size: 0.9em; color: #666;">
      This is an automated message. Please do not reply to this email.
    </p>
  </div>
</div>
</body>
</html>
`))
