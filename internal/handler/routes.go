package handler

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the fee and payment routes on an /api/v1 group.
func RegisterRoutes(v1 *gin.RouterGroup, fees *FeeHandler, drafts *DraftHandler) {
	v1.GET("/academic-years/active", fees.GetActiveYear)

	feeRoutes := v1.Group("/fees")
	{
		feeRoutes.GET("/catalog", fees.GetCatalog)
		feeRoutes.GET("/cumulative", fees.GetCumulative)
		feeRoutes.GET("/stats", fees.GetStats)
		feeRoutes.GET("/monthly-summary", fees.GetMonthlySummary)
		feeRoutes.GET("/category-summary", fees.GetCategorySummary)
	}

	students := v1.Group("/students/:student_id")
	{
		students.GET("/installments", fees.GetStudentInstallments)
		students.GET("/payment-details", fees.OpenPaymentDetails)
		students.DELETE("/payment-details", fees.ClosePaymentDetails)
		students.GET("/submissions", drafts.ListSubmissions)
	}

	paymentDrafts := v1.Group("/payment-drafts")
	{
		paymentDrafts.POST("", drafts.OpenDraft)
		paymentDrafts.GET("/:draft_id", drafts.GetDraft)
		paymentDrafts.DELETE("/:draft_id", drafts.DiscardDraft)
		paymentDrafts.PATCH("/:draft_id/lines/:mapping_id", drafts.UpdateLine)
		paymentDrafts.POST("/:draft_id/submit", drafts.SubmitDraft)
	}

	v1.GET("/submissions/:submission_id", drafts.GetSubmission)
}
