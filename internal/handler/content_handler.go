package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/portaldomei/mei-portal-go/internal/service"
)

// ============================================================
// Conteúdo público — /v1/content
// ============================================================

func homeContentHandler(svc *service.ContentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/content/home")
		defer span.End()

		home, err := svc.GetHomeContent(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, home)
	}
}

func listBannersHandler(svc *service.ContentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/content/banners")
		defer span.End()

		banners, err := svc.ListBanners(ctx, true)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"banners": banners})
	}
}

func listPartnersHandler(svc *service.ContentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET partners")
		defer span.End()

		partners, err := svc.ListPartners(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"partners": partners})
	}
}

func listPostsHandler(svc *service.ContentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/content/posts")
		defer span.End()

		posts, err := svc.ListPosts(ctx, true)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
	}
}

func getPostHandler(svc *service.ContentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET post")
		defer span.End()

		postID := chi.URLParam(r, "postId")
		span.SetAttributes(attribute.String("post.id", postID))

		post, err := svc.GetPost(ctx, postID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, post)
	}
}

func listLoanProductsHandler(svc *service.ContentService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET loan products")
		defer span.End()

		products, err := svc.ListLoanProducts(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"loanProducts": products})
	}
}
