package domain

const (
	RoleAdmin  = "ADMIN"
	RoleClient = "CLIENT"
)

// Task type keys. These are also the quota ledger keys, except for the two
// review types which map onto blog/receipt (see QuotaKey).
const (
	TaskFollower   = "follower"
	TaskLike       = "like"
	TaskHotpost    = "hotpost"
	TaskMomcafe    = "momcafe"
	TaskPowerblog  = "powerblog"
	TaskClip       = "clip"
	TaskBlog       = "blog"
	TaskReceipt    = "receipt"
	TaskDaangn     = "daangn"
	TaskExperience = "experience"
	TaskMyexpense  = "myexpense"

	TaskBlogReview    = "blog_review"
	TaskReceiptReview = "receipt_review"
)

// QuotaKeys is the fixed set of ledger keys a plan can grant.
var QuotaKeys = []string{
	TaskFollower, TaskLike, TaskHotpost, TaskMomcafe, TaskPowerblog,
	TaskClip, TaskBlog, TaskReceipt, TaskDaangn, TaskExperience, TaskMyexpense,
}

// Order statuses. Simple task types use pending/working/done; the review
// types walk the full publication workflow.
const (
	StatusPending           = "pending"
	StatusWorking           = "working"
	StatusDone              = "done"
	StatusDraftUploaded     = "draft_uploaded"
	StatusRevisionRequested = "revision_requested"
	StatusDraftRevised      = "draft_revised"
	StatusClientApproved    = "client_approved"
	StatusPublished         = "published"
)

// Contract plan selectors (months). Plan 1 is the manual plan: it grants an
// empty quota the admin fills in by hand before commit.
const (
	Plan1 = "1"
	Plan3 = "3"
	Plan6 = "6"
)

// System setting keys seeded at boot.
const (
	SettingMinFollowerCount = "min_follower_count"
	SettingMinLikeCount     = "min_like_count"
)

// IsTaskType reports whether t is a known task type (quota key or review type).
func IsTaskType(t string) bool {
	if t == TaskBlogReview || t == TaskReceiptReview {
		return true
	}
	for _, k := range QuotaKeys {
		if t == k {
			return true
		}
	}
	return false
}

// IsReviewType reports whether t is subject to the publication workflow.
func IsReviewType(t string) bool {
	return t == TaskBlogReview || t == TaskReceiptReview
}

// QuotaKey maps a task type to the ledger key it consumes.
func QuotaKey(taskType string) string {
	switch taskType {
	case TaskBlogReview:
		return TaskBlog
	case TaskReceiptReview:
		return TaskReceipt
	default:
		return taskType
	}
}

// IsPlan reports whether p is a known contract plan selector.
func IsPlan(p string) bool {
	return p == Plan1 || p == Plan3 || p == Plan6
}
