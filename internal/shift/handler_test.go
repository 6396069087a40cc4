package shift_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/shifts-logger/internal"
	"github.com/frahmantamala/shifts-logger/internal/shift"
	"github.com/frahmantamala/shifts-logger/internal/transport"
)

var _ = Describe("ShiftHandler", func() {
	var (
		router *chi.Mux
		caller string
	)

	BeforeEach(func() {
		lg := slog.New(slog.NewTextHandler(io.Discard, nil))
		svc := shift.NewService(shift.NewMemoryRepository(), nil, lg)
		h := shift.NewHandler(transport.NewBaseHandler(lg), svc)
		caller = "u1"

		router = chi.NewRouter()
		router.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				ctx := internal.ContextWithPrincipal(r.Context(), &internal.Principal{UserID: caller, Role: "employee"})
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		})
		router.Route("/api/shifts", func(r chi.Router) {
			r.Post("/add", h.AddShift)
			r.Put("/update/{id}", h.UpdateShift)
			r.Delete("/delete/{id}", h.DeleteShift)
			r.Get("/count", h.CountShifts)
			r.Get("/admin", h.ListAllShifts)
			r.Get("/admin/count", h.CountAllShifts)
			r.Get("/{id}", h.GetShift)
			r.Get("/", h.ListShifts)
		})
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder) map[string]interface{} {
		var out map[string]interface{}
		Expect(json.Unmarshal(rec.Body.Bytes(), &out)).To(Succeed())
		return out
	}

	const window = `{"shiftStart":"2026-01-10T07:30:00Z","shiftEnd":"2026-01-10T15:30:00Z"}`

	It("creates a shift with 201", func() {
		// When
		rec := do(http.MethodPost, "/api/shifts/add", window)

		// Then
		Expect(rec.Code).To(Equal(http.StatusCreated))
		body := decode(rec)
		Expect(body["id"]).To(BeNumerically("==", 1))
		Expect(body["userId"]).To(Equal("u1"))
		Expect(body["duration"]).To(Equal("8h0m0s"))
		Expect(body["durationSeconds"]).To(BeNumerically("==", 28800))
	})

	It("answers 422 when the start is missing", func() {
		rec := do(http.MethodPost, "/api/shifts/add", `{"shiftEnd":"2026-01-10T15:30:00Z"}`)
		Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
		Expect(decode(rec)["message"]).To(Equal("Shift start date and time is required."))
	})

	It("answers 400 when the end precedes the start", func() {
		rec := do(http.MethodPost, "/api/shifts/add", `{"shiftStart":"2026-01-10T15:30:00Z","shiftEnd":"2026-01-10T07:30:00Z"}`)
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("returns, updates and deletes the caller's shift", func() {
		do(http.MethodPost, "/api/shifts/add", window)

		rec := do(http.MethodGet, "/api/shifts/1", "")
		Expect(rec.Code).To(Equal(http.StatusOK))

		rec = do(http.MethodPut, "/api/shifts/update/1", `{"shiftStart":"2026-01-10T08:00:00Z","shiftEnd":"2026-01-10T09:30:00Z"}`)
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)["duration"]).To(Equal("1h30m0s"))

		rec = do(http.MethodDelete, "/api/shifts/delete/1", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)["message"]).To(Equal("Shift 1 deleted successfully"))

		rec = do(http.MethodGet, "/api/shifts/1", "")
		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(decode(rec)["message"]).To(Equal("No shift with id 1 found"))
	})

	It("answers 401 for another user's shift", func() {
		do(http.MethodPost, "/api/shifts/add", window)
		caller = "u2"

		rec := do(http.MethodDelete, "/api/shifts/delete/1", "")

		Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		Expect(decode(rec)["message"]).To(Equal("Invalid credentials for accessing or modifying shift 1"))
	})

	It("answers 400 for a non-numeric id", func() {
		rec := do(http.MethodGet, "/api/shifts/abc", "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("lists with default paging and counts", func() {
		for i := 0; i < 12; i++ {
			do(http.MethodPost, "/api/shifts/add", window)
		}

		rec := do(http.MethodGet, "/api/shifts/", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		body := decode(rec)
		Expect(body["items"]).To(HaveLen(10))
		Expect(body["pageNumber"]).To(BeNumerically("==", 1))
		Expect(body["totalPages"]).To(BeNumerically("==", 2))
		Expect(body["totalCount"]).To(BeNumerically("==", 12))

		rec = do(http.MethodGet, "/api/shifts/?page=2&pageSize=10", "")
		Expect(decode(rec)["items"]).To(HaveLen(2))

		rec = do(http.MethodGet, "/api/shifts/count", "")
		Expect(decode(rec)["count"]).To(BeNumerically("==", 12))
	})

	It("rejects a bad page query", func() {
		rec := do(http.MethodGet, "/api/shifts/?page=0", "")
		Expect(rec.Code).To(Equal(http.StatusBadRequest))
	})

	It("shows every user's shifts on the admin listing", func() {
		do(http.MethodPost, "/api/shifts/add", window)
		caller = "u2"
		do(http.MethodPost, "/api/shifts/add", window)

		rec := do(http.MethodGet, "/api/shifts/admin?page=1&pageSize=5", "")
		Expect(rec.Code).To(Equal(http.StatusOK))
		Expect(decode(rec)["totalCount"]).To(BeNumerically("==", 2))

		rec = do(http.MethodGet, "/api/shifts/admin/count", "")
		Expect(decode(rec)["count"]).To(BeNumerically("==", 2))
	})
})
