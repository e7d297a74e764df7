package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	messagesvc "farmmarket/internal/service/message"
	reportsvc "farmmarket/internal/service/report"
	reviewsvc "farmmarket/internal/service/review"
	socialsvc "farmmarket/internal/service/social"
)

func sendMessageHandler(svc *messagesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in messagesvc.SendInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "receiver_id and content are required")
			return
		}
		m, err := svc.Send(c.Request.Context(), callerID(c), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, m)
	}
}

func conversationsHandler(svc *messagesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		convs, err := svc.Conversations(c.Request.Context(), callerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"conversations": convs})
	}
}

func threadHandler(svc *messagesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		msgs, err := svc.Thread(c.Request.Context(), callerID(c), c.Param("partnerID"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": msgs})
	}
}

func unreadCountHandler(svc *messagesvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := svc.UnreadCount(c.Request.Context(), callerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"unread_count": n})
	}
}

func createReviewHandler(svc *reviewsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in reviewsvc.CreateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "product_id and rating are required")
			return
		}
		r, err := svc.Create(c.Request.Context(), callerID(c), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, r)
	}
}

func productReviewsHandler(svc *reviewsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviews, err := svc.ForProduct(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, reviews)
	}
}

func vendorReviewsHandler(svc *reviewsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviews, err := svc.ForVendor(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviews": reviews})
	}
}

func myReviewsHandler(svc *reviewsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		reviews, err := svc.Mine(c.Request.Context(), callerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reviews": reviews})
	}
}

func myReportsHandler(svc *reportsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		reports, err := svc.ListByVendor(c.Request.Context(), callerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"reports": reports})
	}
}

func fileReportHandler(svc *reportsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in reportsvc.FileInput
		if err := c.ShouldBindJSON(&in); err != nil {
			badRequest(c, "vendor_id and report_type are required")
			return
		}
		r, err := svc.File(c.Request.Context(), callerID(c), in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, r)
	}
}

func followVendorHandler(svc *socialsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, err := svc.Follow(c.Request.Context(), callerID(c), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, f)
	}
}

func unfollowVendorHandler(svc *socialsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := svc.Unfollow(c.Request.Context(), callerID(c), c.Param("id")); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "unfollowed"})
	}
}

func isFollowingHandler(svc *socialsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		following, err := svc.IsFollowing(c.Request.Context(), callerID(c), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"following": following})
	}
}

func followingHandler(svc *socialsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		follows, err := svc.Following(c.Request.Context(), callerID(c))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"following": follows})
	}
}

func followersHandler(svc *socialsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		follows, err := svc.Followers(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"followers": follows})
	}
}

func vendorProfileHandler(svc *socialsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.VendorProfile(c.Request.Context(), c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}
