package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"cims/handler"
	"cims/middleware"
	"cims/service"
	"cims/storage"
)

// SetupRoutes configures all API routes
func SetupRoutes(
	issueService *service.IssueService,
	complaintService *service.ComplaintService,
	redirectService *service.RedirectService,
	reportService *service.ReportService,
	profileService *service.ProfileService,
	uploader storage.Uploader,
	jwtSecret string,
	tokenExpiresInHours int,
) *mux.Router {
	router := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(profileService, jwtSecret, tokenExpiresInHours)
	issueHandler := handler.NewIssueHandler(issueService)
	deptHandler := handler.NewDepartmentHandler(complaintService, redirectService, uploader)
	reportHandler := handler.NewReportHandler(reportService)
	adminHandler := handler.NewAdminHandler(profileService)

	// Initialize auth middleware
	citizenAuth := middleware.NewAuthMiddleware(jwtSecret)
	officialAuth := middleware.NewOfficialAuthMiddleware(profileService, jwtSecret)

	// API v1 routes
	apiV1 := router.PathPrefix("/api/v1").Subrouter()

	// Auth routes (public)
	auth := apiV1.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/official/login", authHandler.OfficialLogin).Methods("POST")
	auth.HandleFunc("/citizen/token", authHandler.CitizenToken).Methods("POST")

	// Citizen issue routes (require citizen auth)
	issues := apiV1.PathPrefix("/issues").Subrouter()
	issues.Handle("", citizenAuth.RequireAuth(http.HandlerFunc(issueHandler.SubmitIssue))).Methods("POST")
	issues.Handle("", citizenAuth.RequireAuth(http.HandlerFunc(issueHandler.ListIssues))).Methods("GET")

	// POST /api/v1/issues/analyze - AI pre-fill from a photo (public: runs before submission)
	issues.HandleFunc("/analyze", issueHandler.AnalyzeIssue).Methods("POST")

	issues.Handle("/{id}", citizenAuth.RequireAuth(http.HandlerFunc(issueHandler.GetIssue))).Methods("GET")

	// Citizen notification inbox
	notifications := apiV1.PathPrefix("/notifications").Subrouter()
	notifications.Handle("", citizenAuth.RequireAuth(http.HandlerFunc(issueHandler.ListNotifications))).Methods("GET")
	notifications.Handle("/{id}/read", citizenAuth.RequireAuth(http.HandlerFunc(issueHandler.MarkNotificationRead))).Methods("POST")

	// Department dashboard routes (require official auth)
	dept := apiV1.PathPrefix("/dept").Subrouter()
	dept.Use(officialAuth.RequireOfficialAuth)
	dept.HandleFunc("/complaints", deptHandler.GetQueue).Methods("GET")
	dept.HandleFunc("/complaints/{id}", deptHandler.GetComplaint).Methods("GET")
	dept.HandleFunc("/complaints/{id}/redirects", deptHandler.GetRedirects).Methods("GET")
	dept.HandleFunc("/complaints/{id}/accept", deptHandler.Accept).Methods("POST")
	dept.HandleFunc("/complaints/{id}/redirect", deptHandler.Redirect).Methods("POST")
	dept.HandleFunc("/complaints/{id}/stage", deptHandler.AdvanceStage).Methods("POST")
	dept.HandleFunc("/complaints/{id}/complete", deptHandler.Complete).Methods("POST")
	dept.HandleFunc("/reports", reportHandler.GetReport).Methods("GET")
	dept.HandleFunc("/profile", adminHandler.GetOwnProfile).Methods("GET")
	dept.HandleFunc("/profile", adminHandler.UpdateOwnProfile).Methods("PUT")

	// Admin routes (require official auth + admin role)
	admin := apiV1.PathPrefix("/admin").Subrouter()
	admin.Use(officialAuth.RequireOfficialAuth, officialAuth.RequireAdmin)
	admin.HandleFunc("/profiles", adminHandler.ListProfiles).Methods("GET")
	admin.HandleFunc("/profiles", adminHandler.CreateOfficial).Methods("POST")
	admin.HandleFunc("/profiles/{id}/role", adminHandler.UpdateRole).Methods("PUT")

	// Health check
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return router
}
