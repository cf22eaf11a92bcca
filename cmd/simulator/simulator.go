package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// SimulatorConfig holds the simulator configuration
type SimulatorConfig struct {
	ServerURL     string
	Email         string
	Password      string
	TankID        string
	PricePerLiter float64
	Interval      time.Duration
	Seed          bool
}

// Wire types. The simulator is an ordinary API client, so it mirrors the
// JSON it sees instead of importing server internals. Decimal fields come
// back as quoted strings.
type apiTank struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FuelType string `json:"fuel_type"`
	Status   string `json:"status"`
}

type apiNozzle struct {
	ID     string `json:"id"`
	TankID string `json:"tank_id"`
	Status string `json:"status"`
}

type apiNozzleReading struct {
	NozzleID          string `json:"nozzle_id"`
	Attendant         string `json:"attendant"`
	ElectronicClosing string `json:"electronic_closing"`
	MechanicalClosing string `json:"mechanical_closing"`
}

type apiReading struct {
	ID               string             `json:"id"`
	Date             string             `json:"date"`
	ShiftType        string             `json:"shift_type"`
	ClosingDipCM     string             `json:"closing_dip_cm"`
	ClosingVolume    string             `json:"closing_volume"`
	TotalElectronic  string             `json:"total_electronic"`
	LossPercent      string             `json:"loss_percent"`
	CashDifference   string             `json:"cash_difference"`
	ValidationStatus string             `json:"validation_status"`
	NozzleReadings   []apiNozzleReading `json:"nozzle_readings"`
	DeliveryWarnings []string           `json:"delivery_warnings"`
}

type apiDelivery struct {
	ID              string `json:"id"`
	TankID          string `json:"tank_id"`
	Supplier        string `json:"supplier"`
	InvoiceNumber   string `json:"invoice_number"`
	VolumeDelivered string `json:"volume_delivered"`
}

// Simulator drives the back office the way a shift supervisor would: it
// submits dip and totalizer readings, records deliveries and pulls reports.
type Simulator struct {
	config *SimulatorConfig
	client *http.Client
	log    *zap.Logger

	token      string
	tankID     string
	fuelType   string
	nozzleIDs  []string
	attendants []string
	rng        *rand.Rand

	// pendingDelivery is claimed by the next submitted shift.
	pendingDelivery *apiDelivery

	wsConn   *websocket.Conn
	mu       sync.Mutex
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewSimulator creates a new shift entry simulator
func NewSimulator(config *SimulatorConfig, log *zap.Logger) *Simulator {
	return &Simulator{
		config:     config,
		client:     &http.Client{Timeout: 15 * time.Second},
		log:        log,
		attendants: []string{"Amina", "Joseph", "Grace", "Peter"},
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		stopChan:   make(chan struct{}),
	}
}

// TankID returns the tank the simulator submits readings for.
func (s *Simulator) TankID() string {
	return s.tankID
}

// Connect logs in, resolves the target tank and its nozzles, and opens the
// live update feed.
func (s *Simulator) Connect() error {
	if err := s.login(); err != nil {
		return err
	}

	if err := s.resolveTank(); err != nil {
		return err
	}

	if err := s.connectWebSocket(); err != nil {
		s.log.Warn("Live update feed unavailable", zap.Error(err))
	}

	return nil
}

// Stop stops the simulator
func (s *Simulator) Stop() {
	close(s.stopChan)
	if s.wsConn != nil {
		s.wsConn.Close()
	}
	s.wg.Wait()
}

// --- API plumbing ---

func (s *Simulator) login() error {
	body := map[string]string{"email": s.config.Email, "password": s.config.Password}

	var resp struct {
		Tokens struct {
			AccessToken string `json:"accessToken"`
		} `json:"tokens"`
	}
	if err := s.call(http.MethodPost, "/api/v1/auth/login", body, &resp); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	s.token = resp.Tokens.AccessToken
	s.log.Info("Logged in", zap.String("email", s.config.Email))
	return nil
}

func (s *Simulator) resolveTank() error {
	var tanks []apiTank
	if err := s.call(http.MethodGet, "/api/v1/tanks", nil, &tanks); err != nil {
		return err
	}

	if len(tanks) == 0 && s.config.Seed {
		if err := s.seedStation(); err != nil {
			return fmt.Errorf("seeding station: %w", err)
		}
		if err := s.call(http.MethodGet, "/api/v1/tanks", nil, &tanks); err != nil {
			return err
		}
	}

	for _, t := range tanks {
		if s.config.TankID != "" && t.ID != s.config.TankID {
			continue
		}
		if t.Status != "Active" {
			continue
		}
		s.tankID = t.ID
		s.fuelType = t.FuelType
		break
	}
	if s.tankID == "" {
		return fmt.Errorf("no active tank found (use -seed to create one)")
	}

	var nozzles []apiNozzle
	if err := s.call(http.MethodGet, "/api/v1/nozzles?tank_id="+url.QueryEscape(s.tankID), nil, &nozzles); err != nil {
		return err
	}
	for _, n := range nozzles {
		if n.Status == "Active" {
			s.nozzleIDs = append(s.nozzleIDs, n.ID)
		}
	}
	if len(s.nozzleIDs) == 0 {
		return fmt.Errorf("tank %s has no active nozzles", s.tankID)
	}

	s.log.Info("Tank resolved",
		zap.String("tank_id", s.tankID),
		zap.String("fuel_type", s.fuelType),
		zap.Int("nozzles", len(s.nozzleIDs)),
	)
	return nil
}

// seedStation creates a minimal forecourt: one tank, one island, one pump,
// two nozzles. Requires an admin login.
func (s *Simulator) seedStation() error {
	tank := map[string]interface{}{
		"id":              "TANK-1",
		"name":            "Tank 1 (Diesel)",
		"fuel_type":       "DIESEL",
		"capacity_liters": "25000",
	}
	if err := s.call(http.MethodPost, "/api/v1/tanks", tank, nil); err != nil {
		return err
	}

	island := map[string]interface{}{"id": "ISL-1", "name": "Island 1", "position": 1}
	if err := s.call(http.MethodPost, "/api/v1/islands", island, nil); err != nil {
		return err
	}

	pump := map[string]interface{}{"id": "PUMP-1", "island_id": "ISL-1", "name": "Pump 1"}
	if err := s.call(http.MethodPost, "/api/v1/pumps", pump, nil); err != nil {
		return err
	}

	for i := 1; i <= 2; i++ {
		nozzle := map[string]interface{}{
			"id":        fmt.Sprintf("NOZ-1-%d", i),
			"pump_id":   "PUMP-1",
			"tank_id":   "TANK-1",
			"fuel_type": "DIESEL",
		}
		if err := s.call(http.MethodPost, "/api/v1/nozzles", nozzle, nil); err != nil {
			return err
		}
	}

	s.log.Info("Station seeded", zap.String("tank_id", "TANK-1"))
	return nil
}

// call performs one authenticated API request. A non-2xx response is
// returned as an error carrying the server's message.
func (s *Simulator) call(method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, s.config.ServerURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (HTTP %d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: HTTP %d", method, path, resp.StatusCode)
	}

	if out != nil {
		return json.Unmarshal(data, out)
	}
	return nil
}

// --- Shift generation ---

// previousShift returns the latest reading for the tank, or nil on the
// very first shift.
func (s *Simulator) previousShift() (*apiReading, error) {
	var reading apiReading
	err := s.call(http.MethodGet, "/api/v1/readings/previous/"+s.tankID, nil, &reading)
	if err != nil {
		if strings.Contains(err.Error(), "HTTP 404") {
			return nil, nil
		}
		return nil, err
	}
	return &reading, nil
}

// SubmitShift generates the next plausible shift from the previous one and
// submits it. Roughly one shift in four records and claims a delivery, and
// the generated shrinkage occasionally crosses the warning thresholds so
// the verdicts vary.
func (s *Simulator) SubmitShift() error {
	prev, err := s.previousShift()
	if err != nil {
		return err
	}

	date, shiftType := s.nextShiftSlot(prev)

	openingVolume := 18000.0
	openingDip := 180.0
	if prev != nil {
		openingVolume = num(prev.ClosingVolume)
		openingDip = num(prev.ClosingDipCM)
	}

	// Totalizer movement per nozzle
	type nozzleGen struct {
		id       string
		opening  float64
		sold     float64
		mechOpen float64
	}
	gens := make([]nozzleGen, len(s.nozzleIDs))
	totalSold := 0.0
	for i, id := range s.nozzleIDs {
		opening := 10000.0 + float64(i)*5000.0
		mechOpen := opening
		if prev != nil {
			for _, nr := range prev.NozzleReadings {
				if nr.NozzleID == id {
					opening = num(nr.ElectronicClosing)
					mechOpen = num(nr.MechanicalClosing)
				}
			}
		}
		sold := round2(300 + s.rng.Float64()*600)
		gens[i] = nozzleGen{id: id, opening: opening, sold: sold, mechOpen: mechOpen}
		totalSold += sold
	}

	// Refill when the tank runs low, and claim it with this shift
	var deliveries []map[string]interface{}
	delivered := 0.0
	if openingVolume-totalSold < 5000 || s.pendingDelivery != nil || s.rng.Intn(4) == 0 {
		if s.pendingDelivery == nil {
			if err := s.RecordDelivery(round2(8000 + s.rng.Float64()*4000)); err != nil {
				s.log.Warn("Delivery failed, submitting without one", zap.Error(err))
			}
		}
		if s.pendingDelivery != nil {
			delivered = num(s.pendingDelivery.VolumeDelivered)
			deliveries = append(deliveries, map[string]interface{}{
				"delivery_id": s.pendingDelivery.ID,
			})
		}
	}

	// Dip movement: what was sold plus a little shrinkage. Once in a
	// while the shrinkage is large enough to trip the thresholds.
	shrink := totalSold * s.rng.Float64() * 0.004
	if s.rng.Intn(8) == 0 {
		shrink = totalSold * (0.01 + s.rng.Float64()*0.015)
	}
	closingVolume := round2(openingVolume - totalSold - shrink + delivered)
	closingDip := round2(closingVolume / 100.0) // flat-tank chart: 100 L per cm

	// Cash: expected take, sometimes banked a little short
	expected := round2(totalSold * s.config.PricePerLiter)
	banked := expected
	if s.rng.Intn(3) == 0 {
		banked = round2(expected - s.rng.Float64()*80)
	}

	nozzleReadings := make([]map[string]interface{}, len(gens))
	for i, g := range gens {
		nozzleReadings[i] = map[string]interface{}{
			"nozzle_id":          g.id,
			"attendant":          s.attendants[i%len(s.attendants)],
			"electronic_opening": g.opening,
			"electronic_closing": round2(g.opening + g.sold),
			"mechanical_opening": g.mechOpen,
			"mechanical_closing": round2(g.mechOpen + g.sold),
		}
	}

	submission := map[string]interface{}{
		"tank_id":            s.tankID,
		"date":               date,
		"shift_type":         shiftType,
		"opening_dip_cm":     openingDip,
		"closing_dip_cm":     closingDip,
		"opening_volume":     openingVolume,
		"closing_volume":     closingVolume,
		"nozzle_readings":    nozzleReadings,
		"deliveries":         deliveries,
		"price_per_liter":    s.config.PricePerLiter,
		"actual_cash_banked": banked,
	}

	var result apiReading
	if err := s.call(http.MethodPost, "/api/v1/readings", submission, &result); err != nil {
		return err
	}
	s.pendingDelivery = nil

	fmt.Printf("Submitted %s %s shift: sold %.2f L, verdict %s (loss %s%%, cash diff %s)\n",
		date, shiftType, totalSold, result.ValidationStatus, result.LossPercent, result.CashDifference)
	for _, warning := range result.DeliveryWarnings {
		fmt.Printf("  warning: %s\n", warning)
	}
	return nil
}

// nextShiftSlot picks the date and shift following the previous reading.
// DAY is followed by NIGHT on the same date, NIGHT by DAY on the next.
func (s *Simulator) nextShiftSlot(prev *apiReading) (string, string) {
	if prev == nil {
		return time.Now().Format("2006-01-02"), "DAY"
	}
	if prev.ShiftType == "DAY" {
		return prev.Date, "NIGHT"
	}
	prevDate, err := time.Parse("2006-01-02", prev.Date)
	if err != nil {
		return time.Now().Format("2006-01-02"), "DAY"
	}
	return prevDate.AddDate(0, 0, 1).Format("2006-01-02"), "DAY"
}

// RecordDelivery records an offload into the unlinked pool. The next
// submitted shift claims it.
func (s *Simulator) RecordDelivery(liters float64) error {
	req := map[string]interface{}{
		"tank_id":          s.tankID,
		"delivered_at":     time.Now().Format(time.RFC3339),
		"supplier":         "Lakeview Fuels",
		"invoice_number":   fmt.Sprintf("INV-%d", time.Now().Unix()),
		"fuel_type":        s.fuelType,
		"volume_delivered": liters,
	}

	var delivery apiDelivery
	if err := s.call(http.MethodPost, "/api/v1/deliveries", req, &delivery); err != nil {
		return err
	}
	s.pendingDelivery = &delivery

	fmt.Printf("Recorded delivery %s: %.2f L from %s\n", delivery.ID, liters, delivery.Supplier)
	return nil
}

// --- Live update feed ---

func (s *Simulator) connectWebSocket() error {
	wsURL, err := url.Parse(s.config.ServerURL)
	if err != nil {
		return err
	}
	switch wsURL.Scheme {
	case "https":
		wsURL.Scheme = "wss"
	default:
		wsURL.Scheme = "ws"
	}
	wsURL.Path = "/ws/updates"
	wsURL.RawQuery = "userId=simulator"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		return err
	}
	s.wsConn = conn
	s.log.Info("Connected to live update feed", zap.String("url", wsURL.String()))

	s.wg.Add(1)
	go s.readEvents()
	return nil
}

// readEvents prints broadcast events as they arrive.
func (s *Simulator) readEvents() {
	defer s.wg.Done()

	for {
		select {
		case <-s.stopChan:
			return
		default:
			_, message, err := s.wsConn.ReadMessage()
			if err != nil {
				select {
				case <-s.stopChan:
				default:
					s.log.Warn("Live update feed closed", zap.Error(err))
				}
				return
			}

			var event struct {
				Event   string          `json:"event"`
				Payload json.RawMessage `json:"payload"`
			}
			if err := json.Unmarshal(message, &event); err != nil {
				continue
			}
			fmt.Printf("  [event] %s %s\n", event.Event, string(event.Payload))
		}
	}
}

// --- Modes ---

// RunAuto submits shifts back to back. shifts == 0 runs until stopped.
func (s *Simulator) RunAuto(shifts int) {
	submitted := 0
	for {
		select {
		case <-s.stopChan:
			return
		default:
		}

		if err := s.SubmitShift(); err != nil {
			s.log.Error("Submission failed", zap.Error(err))
		} else {
			submitted++
		}
		if shifts > 0 && submitted >= shifts {
			fmt.Printf("Submitted %d shifts, done\n", submitted)
			return
		}

		select {
		case <-s.stopChan:
			return
		case <-time.After(s.config.Interval):
		}
	}
}

// RunInteractive runs the simulator in interactive mode
func (s *Simulator) RunInteractive() {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		parts := strings.Fields(line)

		if len(parts) == 0 {
			fmt.Print("> ")
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "submit":
			if err := s.SubmitShift(); err != nil {
				fmt.Printf("Error: %v\n", err)
			}

		case "delivery":
			liters := 10000.0
			if len(args) > 0 {
				liters, _ = strconv.ParseFloat(args[0], 64)
			}
			if err := s.RecordDelivery(liters); err != nil {
				fmt.Printf("Error: %v\n", err)
			}

		case "previous":
			prev, err := s.previousShift()
			if err != nil {
				fmt.Printf("Error: %v\n", err)
			} else if prev == nil {
				fmt.Println("No previous shift for this tank")
			} else {
				fmt.Printf("%s %s: closing volume %s L, verdict %s\n",
					prev.Date, prev.ShiftType, prev.ClosingVolume, prev.ValidationStatus)
			}

		case "unlinked":
			var deliveries []apiDelivery
			err := s.call(http.MethodGet, "/api/v1/deliveries/unlinked?tank_id="+url.QueryEscape(s.tankID), nil, &deliveries)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
			} else if len(deliveries) == 0 {
				fmt.Println("No unlinked deliveries")
			} else {
				for _, d := range deliveries {
					fmt.Printf("%s: %s L from %s (%s)\n", d.ID, d.VolumeDelivered, d.Supplier, d.InvoiceNumber)
				}
			}

		case "report":
			if len(args) < 1 {
				fmt.Println("Usage: report <YYYY-MM-DD>")
			} else {
				s.printDailySummary(args[0])
			}

		case "attendants":
			if len(args) < 1 {
				fmt.Println("Usage: attendants <YYYY-MM-DD>")
			} else {
				s.printAttendantSales(args[0])
			}

		case "quit", "exit":
			fmt.Println("Goodbye!")
			return

		default:
			fmt.Printf("Unknown command: %s\n", cmd)
		}

		fmt.Print("> ")
	}
}

func (s *Simulator) printDailySummary(date string) {
	var summary struct {
		Date            string         `json:"date"`
		TotalLitersSold string         `json:"total_liters_sold"`
		TotalDelivered  string         `json:"total_delivered"`
		TotalBanked     string         `json:"total_banked"`
		TotalDifference string         `json:"total_difference"`
		StatusCounts    map[string]int `json:"status_counts"`
		Rows            []struct {
			TankName         string `json:"tank_name"`
			ShiftType        string `json:"shift_type"`
			TotalElectronic  string `json:"total_electronic"`
			LossPercent      string `json:"loss_percent"`
			ValidationStatus string `json:"validation_status"`
		} `json:"rows"`
	}
	if err := s.call(http.MethodGet, "/api/v1/reports/daily/"+date, nil, &summary); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Daily summary %s: sold %s L, delivered %s L, banked %s (diff %s)\n",
		summary.Date, summary.TotalLitersSold, summary.TotalDelivered,
		summary.TotalBanked, summary.TotalDifference)
	for _, row := range summary.Rows {
		fmt.Printf("  %s %s: %s L, loss %s%%, %s\n",
			row.TankName, row.ShiftType, row.TotalElectronic, row.LossPercent, row.ValidationStatus)
	}
	for status, count := range summary.StatusCounts {
		fmt.Printf("  %s: %d\n", status, count)
	}
}

func (s *Simulator) printAttendantSales(date string) {
	var report struct {
		Date       string `json:"date"`
		Attendants []struct {
			Attendant        string `json:"attendant"`
			NozzleCount      int    `json:"nozzle_count"`
			ElectronicLiters string `json:"electronic_liters"`
			ExpectedAmount   string `json:"expected_amount"`
		} `json:"attendants"`
	}
	if err := s.call(http.MethodGet, "/api/v1/reports/attendants/"+date, nil, &report); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("Attendant sales %s:\n", report.Date)
	for _, a := range report.Attendants {
		fmt.Printf("  %s: %s L over %d nozzles, expected %s\n",
			a.Attendant, a.ElectronicLiters, a.NozzleCount, a.ExpectedAmount)
	}
}

// --- Helpers ---

func num(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
