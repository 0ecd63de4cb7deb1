package notify

// Message keys. Each is the English text and is translated through the
// catalog for the configured locale.
const (
	MsgCartAdded   = "Product added to cart"
	MsgCartUpdated = "Product updated in cart"
	MsgCartRemoved = "Product removed from cart"
	MsgOutOfStock  = "Product out of stock"

	MsgRegisterOK        = "Registration successful"
	MsgRegisterFailed    = "Registration failed"
	MsgLoginOK           = "Signed in successfully"
	MsgLoginFailed       = "Invalid credentials"
	MsgLogoutOK          = "Signed out"
	MsgProfileOK         = "Profile updated"
	MsgProfileFailed     = "Failed to update profile"
	MsgPasswordOK        = "Password updated"
	MsgPasswordFailed    = "Failed to update password"
	MsgForgotOK          = "An email with instructions has been sent"
	MsgForgotFailed      = "Failed to process the request"
	MsgFillRequired      = "Please fill in all required fields"
	MsgLoginRequired     = "You must sign in to continue"
	MsgAccessDenied      = "You do not have permission to access this page"
	MsgInvalidEmail      = "Please enter a valid email"
	MsgNameTooShort      = "Name must be at least 2 characters"
	MsgPasswordTooShort  = "Password must be at least 6 characters"
	MsgPasswordMismatch  = "Passwords do not match"
	MsgPasswordUnchanged = "The new password must be different from the current one"
	MsgRoleInvalid       = "Please choose buyer or seller"
	MsgSessionExpired    = "Your session has expired"

	MsgShippingRequired = "Please enter a shipping address"
	MsgCardIncomplete   = "Please fill in all card fields"
	MsgCardUnknown      = "Card number not valid for testing"
	MsgPaymentApproved  = "Payment approved! Order created successfully"
	MsgOrderPending     = "Order created. Status: %s"
	MsgOrderFailed      = "Failed to process the order"
	MsgCartEmpty        = "Your cart is empty"

	MsgOrderStatusOK     = "Order status updated"
	MsgOrderStatusFailed = "Failed to update order status"
	MsgOrderLoadFailed   = "Failed to load the order"
	MsgOrdersLoadFailed  = "Failed to load orders"
	MsgTransitionInvalid = "This status change is not allowed"
	MsgSellerDataFailed  = "Failed to load seller data"

	MsgRatingRequired  = "Please select a rating"
	MsgCommentRequired = "Please write a comment"
	MsgReviewOK        = "Review added successfully"
	MsgReviewFailed    = "Failed to submit review"

	MsgMessageFailed       = "Failed to send message"
	MsgMessagesLoadFailed  = "Failed to load messages"
	MsgConversationsFailed = "Failed to load conversations"

	MsgProductsLoadFailed  = "Failed to load products"
	MsgProductDeleted      = "Product deleted successfully"
	MsgProductDeleteFailed = "Failed to delete product"
	MsgProductUpdated      = "Product updated successfully"
	MsgProductUpdateFailed = "Failed to update product"
	MsgProductCreated      = "Product created successfully"
	MsgProductCreateFailed = "Failed to create product"
	MsgProductLoadFailed   = "Failed to load product information"
	MsgProductNotOwned     = "You do not have permission to edit this product"

	MsgCategoriesLoadFailed = "Failed to load categories"
	MsgCategoryCreated      = "Category created successfully"
	MsgCategoryUpdated      = "Category updated successfully"
	MsgCategoryDeleted      = "Category deleted successfully"
	MsgCategorySaveFailed   = "Failed to save the category"
	MsgCategoryDeleteFailed = "Failed to delete the category"
	MsgUserDeleted          = "User deleted successfully"
	MsgUserUpdated          = "User updated successfully"
	MsgCategoryInUse        = "The category cannot be deleted because it has products"
	MsgUserDeleteFailed     = "Failed to delete the user"
	MsgUserStatusOK         = "User status updated to %s"
	MsgUserStatusFailed     = "Failed to update the user status"
	MsgProductStatusOK      = "Product status updated to %s"
	MsgProductStatusFailed  = "Failed to update the product status"
	MsgAdminOrderStatusOK   = "Order #%s status updated to %s"
	MsgStatsLoadFailed      = "Failed to load dashboard statistics"
	MsgUsersLoadFailed      = "Failed to load users"
	MsgActionCancelled      = "Action cancelled"

	MsgConfirmDeleteProduct  = "Are you sure you want to delete this product?"
	MsgConfirmDeleteCategory = "Are you sure you want to delete this category?"
	MsgConfirmDeleteUser     = "Are you sure you want to delete user %s?"
	MsgConfirmCancelOrder    = "Are you sure you want to cancel order #%s?"
)
