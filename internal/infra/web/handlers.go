package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"wedding-ecard-platform/internal/domain"
	"wedding-ecard-platform/internal/domain/model"
	"wedding-ecard-platform/internal/usecase"
)

// ===== request/response shapes =====

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ecardRequest struct {
	BrideName     string     `json:"bride_name" validate:"required"`
	GroomName     string     `json:"groom_name" validate:"required"`
	ParentsNames  string     `json:"parents_names"`
	WeddingDate   time.Time  `json:"wedding_date" validate:"required"`
	WeddingVenue  string     `json:"wedding_venue"`
	TemplateType  string     `json:"template_type"`
	MusicURL      string     `json:"music_url"`
	GoogleMapsURL string     `json:"google_maps_url"`
	WazeURL       string     `json:"waze_url"`
	GiftBankName  string     `json:"gift_bank_name"`
	GiftAccountNo string     `json:"gift_account_no"`
	RSVPDeadline  *time.Time `json:"rsvp_deadline"`
}

func (req ecardRequest) input() usecase.ECardInput {
	return usecase.ECardInput{
		BrideName:     req.BrideName,
		GroomName:     req.GroomName,
		ParentsNames:  req.ParentsNames,
		WeddingDate:   req.WeddingDate,
		WeddingVenue:  req.WeddingVenue,
		TemplateType:  req.TemplateType,
		MusicURL:      req.MusicURL,
		GoogleMapsURL: req.GoogleMapsURL,
		WazeURL:       req.WazeURL,
		GiftBankName:  req.GiftBankName,
		GiftAccountNo: req.GiftAccountNo,
		RSVPDeadline:  req.RSVPDeadline,
	}
}

type ecardResponse struct {
	ID            string     `json:"id"`
	BrideName     string     `json:"bride_name"`
	GroomName     string     `json:"groom_name"`
	ParentsNames  string     `json:"parents_names,omitempty"`
	WeddingDate   time.Time  `json:"wedding_date"`
	WeddingVenue  string     `json:"wedding_venue,omitempty"`
	TemplateType  string     `json:"template_type"`
	Slug          string     `json:"slug"`
	IsPaid        bool       `json:"is_paid"`
	MusicURL      string     `json:"music_url,omitempty"`
	GoogleMapsURL string     `json:"google_maps_url,omitempty"`
	WazeURL       string     `json:"waze_url,omitempty"`
	GiftBankName  string     `json:"gift_bank_name,omitempty"`
	GiftAccountNo string     `json:"gift_account_no,omitempty"`
	RSVPDeadline  *time.Time `json:"rsvp_deadline,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toECardResponse(c *model.ECard) ecardResponse {
	return ecardResponse{
		ID:            c.ID,
		BrideName:     c.BrideName,
		GroomName:     c.GroomName,
		ParentsNames:  c.ParentsNames,
		WeddingDate:   c.WeddingDate,
		WeddingVenue:  c.WeddingVenue,
		TemplateType:  c.TemplateType,
		Slug:          c.Slug,
		IsPaid:        c.IsPaid,
		MusicURL:      c.MusicURL,
		GoogleMapsURL: c.GoogleMapsURL,
		WazeURL:       c.WazeURL,
		GiftBankName:  c.GiftBankName,
		GiftAccountNo: c.GiftAccountNo,
		RSVPDeadline:  c.RSVPDeadline,
		CreatedAt:     c.CreatedAt,
	}
}

// decodeAndValidate unmarshals the body into v and runs struct validation.
func (s *Server) decodeAndValidate(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrInvalidArgument
	}
	if err := s.validate.Struct(v); err != nil {
		return domain.ErrInvalidArgument
	}
	return nil
}

// ===== auth =====

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, err := s.userUC.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.auth.Mint(w, user.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, userResponse{ID: user.ID, Name: user.Name, Email: user.Email})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	user, err := s.userUC.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.auth.Mint(w, user.ID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, userResponse{ID: user.ID, Name: user.Name, Email: user.Email})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// ===== e-cards (owner) =====

func (s *Server) handleECardCreate(w http.ResponseWriter, r *http.Request) {
	var req ecardRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	card, err := s.ecardUC.Create(r.Context(), userID(r.Context()), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toECardResponse(card))
}

func (s *Server) handleECardUpdate(w http.ResponseWriter, r *http.Request) {
	var req ecardRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	card, err := s.ecardUC.Update(r.Context(), userID(r.Context()), chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toECardResponse(card))
}

func (s *Server) handleECardList(w http.ResponseWriter, r *http.Request) {
	cards, err := s.ecardUC.ListOwn(r.Context(), userID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]ecardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, toECardResponse(c))
	}
	response := struct {
		Data []ecardResponse `json:"data"`
	}{Data: out}
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleECardGet(w http.ResponseWriter, r *http.Request) {
	card, err := s.ecardUC.GetOwned(r.Context(), userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toECardResponse(card))
}

func (s *Server) handleECardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.statsUC.CardStats(r.Context(), userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}

	response := struct {
		IsPaid        bool           `json:"is_paid"`
		RSVPCounts    map[string]int `json:"rsvp_counts"`
		AttendingPax  int            `json:"attending_pax"`
		WishCount     int            `json:"wish_count"`
		PaymentStatus string         `json:"payment_status,omitempty"`
	}{
		IsPaid:       stats.IsPaid,
		RSVPCounts:   make(map[string]int, len(stats.RSVPCounts)),
		AttendingPax: stats.AttendingPax,
		WishCount:    stats.WishCount,
	}
	for k, v := range stats.RSVPCounts {
		response.RSVPCounts[string(k)] = v
	}
	if stats.LatestPayment != nil {
		response.PaymentStatus = string(stats.LatestPayment.Status)
	}
	writeJSON(w, http.StatusOK, response)
}

// ===== public card view =====

func (s *Server) handleCardPublic(w http.ResponseWriter, r *http.Request) {
	card, err := s.ecardUC.PublicBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, err)
		return
	}
	// The unpaid card stays viewable as a preview; is_paid lets the client
	// decide which interactive widgets to show.
	writeJSON(w, http.StatusOK, toECardResponse(card))
}

// ===== RSVPs =====

type rsvpSubmitRequest struct {
	ECardID     string `json:"ecard_id" validate:"required"`
	GuestName   string `json:"guest_name" validate:"required"`
	PhoneNumber string `json:"phone_number"`
	NumberOfPax int    `json:"number_of_pax"`
	Status      string `json:"status" validate:"required,oneof=attending not_attending maybe"`
	Message     string `json:"message"`
}

type rsvpResponse struct {
	ID          string    `json:"id"`
	GuestName   string    `json:"guest_name"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	NumberOfPax int       `json:"number_of_pax"`
	Status      string    `json:"status"`
	Message     string    `json:"message,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toRSVPResponse(v *model.RSVP) rsvpResponse {
	return rsvpResponse{
		ID:          v.ID,
		GuestName:   v.GuestName,
		PhoneNumber: v.PhoneNumber,
		NumberOfPax: v.NumberOfPax,
		Status:      string(v.Status),
		Message:     v.Message,
		CreatedAt:   v.CreatedAt,
	}
}

func (s *Server) handleRSVPSubmit(w http.ResponseWriter, r *http.Request) {
	var req rsvpSubmitRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	rsvp, err := s.rsvpUC.Submit(r.Context(), req.ECardID, usecase.RSVPInput{
		GuestName:   req.GuestName,
		PhoneNumber: req.PhoneNumber,
		NumberOfPax: req.NumberOfPax,
		Status:      model.RSVPStatus(req.Status),
		Message:     req.Message,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRSVPResponse(rsvp))
}

func (s *Server) handleRSVPList(w http.ResponseWriter, r *http.Request) {
	rsvps, err := s.rsvpUC.ListForOwner(r.Context(), userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]rsvpResponse, 0, len(rsvps))
	for _, v := range rsvps {
		out = append(out, toRSVPResponse(v))
	}
	response := struct {
		Data []rsvpResponse `json:"data"`
	}{Data: out}
	writeJSON(w, http.StatusOK, response)
}

// ===== wishes =====

type wishSubmitRequest struct {
	ECardID   string `json:"ecard_id" validate:"required"`
	GuestName string `json:"guest_name" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

type wishResponse struct {
	ID        string    `json:"id"`
	GuestName string    `json:"guest_name"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleWishSubmit(w http.ResponseWriter, r *http.Request) {
	var req wishSubmitRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, err)
		return
	}
	wish, err := s.wishUC.Submit(r.Context(), req.ECardID, req.GuestName, req.Message)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, wishResponse{ID: wish.ID, GuestName: wish.GuestName, Message: wish.Message, CreatedAt: wish.CreatedAt})
}

func (s *Server) handleWishList(w http.ResponseWriter, r *http.Request) {
	wishes, err := s.wishUC.ListForOwner(r.Context(), userID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]wishResponse, 0, len(wishes))
	for _, wsh := range wishes {
		out = append(out, wishResponse{ID: wsh.ID, GuestName: wsh.GuestName, Message: wsh.Message, CreatedAt: wsh.CreatedAt})
	}
	response := struct {
		Data []wishResponse `json:"data"`
	}{Data: out}
	writeJSON(w, http.StatusOK, response)
}

// ===== admin stats =====

func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	week, month, year, err := s.statsUC.Revenue(r.Context())
	if err != nil {
		http.Error(w, "Failed to get revenue", http.StatusInternalServerError)
		return
	}

	response := struct {
		Revenue struct {
			Week  int64 `json:"week"`
			Month int64 `json:"month"`
			Year  int64 `json:"year"`
		} `json:"revenue_sen"`
	}{}
	response.Revenue.Week = week
	response.Revenue.Month = month
	response.Revenue.Year = year
	writeJSON(w, http.StatusOK, response)
}
