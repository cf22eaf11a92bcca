package email

// Email templates using HTML

const reconciliationAlertTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #1f2937, #111827); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #ffffff; padding: 30px; border: 1px solid #e5e7eb; border-top: none; }
        .footer { background: #f9fafb; padding: 20px; text-align: center; font-size: 12px; color: #6b7280; border: 1px solid #e5e7eb; border-top: none; border-radius: 0 0 10px 10px; }
        .alert-fail { background: #fee2e2; border: 1px solid #ef4444; padding: 20px; border-radius: 8px; margin: 20px 0; }
        .alert-warning { background: #fef3c7; border: 1px solid #f59e0b; padding: 20px; border-radius: 8px; margin: 20px 0; }
        .info-row { display: flex; justify-content: space-between; padding: 8px 0; border-bottom: 1px solid #e5e7eb; }
        .info-row:last-child { border-bottom: none; }
        .info-label { color: #6b7280; }
        .info-value { font-weight: 600; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.StationName}}</h1>
        <p style="margin: 5px 0 0 0; opacity: 0.9;">Shift Reconciliation Alert</p>
    </div>
    <div class="content">
        <h2>Reconciliation {{.Status}}</h2>
        <p>The {{.Shift}} shift reading for tank <strong>{{.TankID}}</strong> on {{.Date}} did not reconcile cleanly.</p>

        {{if .IsFail}}<div class="alert-fail">{{else}}<div class="alert-warning">{{end}}
            <div class="info-row">
                <span class="info-label">Meter sales</span>
                <span class="info-value">{{.TotalElectronic}} L</span>
            </div>
            <div class="info-row">
                <span class="info-label">Tank movement</span>
                <span class="info-value">{{.TankMovement}} L</span>
            </div>
            <div class="info-row">
                <span class="info-label">Variance</span>
                <span class="info-value">{{.VariancePercent}}%</span>
            </div>
            <div class="info-row">
                <span class="info-label">Loss</span>
                <span class="info-value">{{.LossPercent}}%</span>
            </div>
            <div class="info-row">
                <span class="info-label">Expected cash</span>
                <span class="info-value">{{.ExpectedAmount}}</span>
            </div>
            <div class="info-row">
                <span class="info-label">Cash banked</span>
                <span class="info-value">{{.CashBanked}}</span>
            </div>
            <div class="info-row">
                <span class="info-label">Difference</span>
                <span class="info-value">{{.CashDifference}}</span>
            </div>
        </div>

        {{if .RecordedBy}}<p>Recorded by {{.RecordedBy}}.</p>{{end}}
        <p>Please review the dip readings, totalizer entries and cash count for this shift.</p>
        {{if .BaseURL}}<p><a href="{{.BaseURL}}">Open the back office</a></p>{{end}}
    </div>
    <div class="footer">
        <p>This is an automated message. Please do not reply to this email.</p>
    </div>
</body>
</html>
`

const dailyReportTemplate = `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 700px; margin: 0 auto; padding: 20px; }
        .header { background: linear-gradient(135deg, #1f2937, #111827); color: white; padding: 30px; text-align: center; border-radius: 10px 10px 0 0; }
        .header h1 { margin: 0; font-size: 24px; }
        .content { background: #ffffff; padding: 30px; border: 1px solid #e5e7eb; border-top: none; }
        .footer { background: #f9fafb; padding: 20px; text-align: center; font-size: 12px; color: #6b7280; border: 1px solid #e5e7eb; border-top: none; border-radius: 0 0 10px 10px; }
        table { width: 100%; border-collapse: collapse; margin: 20px 0; font-size: 13px; }
        th { background: #f3f4f6; text-align: left; padding: 8px; border-bottom: 2px solid #e5e7eb; }
        td { padding: 8px; border-bottom: 1px solid #e5e7eb; }
        .status-PASS { color: #047857; font-weight: 600; }
        .status-WARNING { color: #b45309; font-weight: 600; }
        .status-FAIL { color: #b91c1c; font-weight: 600; }
        .totals { background: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0; }
        .info-row { display: flex; justify-content: space-between; padding: 8px 0; border-bottom: 1px solid #e5e7eb; }
        .info-row:last-child { border-bottom: none; }
        .info-label { color: #6b7280; }
        .info-value { font-weight: 600; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.StationName}}</h1>
        <p style="margin: 5px 0 0 0; opacity: 0.9;">Daily Reconciliation Summary</p>
    </div>
    <div class="content">
        <h2>Summary for {{.Date}}</h2>
        <p>{{.PassCount}} passed, {{.WarningCount}} warnings, {{.FailCount}} failed.</p>

        <table>
            <tr>
                <th>Tank</th>
                <th>Shift</th>
                <th>Sold (L)</th>
                <th>Delivered (L)</th>
                <th>Expected</th>
                <th>Banked</th>
                <th>Status</th>
            </tr>
            {{range .Rows}}
            <tr>
                <td>{{.TankName}}</td>
                <td>{{.ShiftType}}</td>
                <td>{{.TotalElectronic}}</td>
                <td>{{.TotalDelivered}}</td>
                <td>{{.ExpectedAmount}}</td>
                <td>{{.ActualCashBanked}}</td>
                <td class="status-{{.ValidationStatus}}">{{.ValidationStatus}}</td>
            </tr>
            {{end}}
        </table>

        <div class="totals">
            <div class="info-row">
                <span class="info-label">Total liters sold</span>
                <span class="info-value">{{.TotalLitersSold}} L</span>
            </div>
            <div class="info-row">
                <span class="info-label">Total delivered</span>
                <span class="info-value">{{.TotalDelivered}} L</span>
            </div>
            <div class="info-row">
                <span class="info-label">Expected cash</span>
                <span class="info-value">{{.TotalExpected}}</span>
            </div>
            <div class="info-row">
                <span class="info-label">Cash banked</span>
                <span class="info-value">{{.TotalBanked}}</span>
            </div>
            <div class="info-row">
                <span class="info-label">Difference</span>
                <span class="info-value">{{.TotalDifference}}</span>
            </div>
        </div>
        {{if .BaseURL}}<p><a href="{{.BaseURL}}">Open the back office</a></p>{{end}}
    </div>
    <div class="footer">
        <p>This is an automated message. Please do not reply to this email.</p>
    </div>
</body>
</html>
`
