package notify

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// spanish holds the translations shown by the storefront, which speaks
// Spanish by default.
var spanish = map[string]string{
	MsgCartAdded:   "Producto añadido al carrito",
	MsgCartUpdated: "Producto actualizado en el carrito",
	MsgCartRemoved: "Producto eliminado del carrito",
	MsgOutOfStock:  "Producto agotado",

	MsgRegisterOK:        "Registro exitoso",
	MsgRegisterFailed:    "Error en el registro",
	MsgLoginOK:           "Inicio de sesión exitoso",
	MsgLoginFailed:       "Credenciales inválidas",
	MsgLogoutOK:          "Sesión cerrada",
	MsgProfileOK:         "Perfil actualizado",
	MsgProfileFailed:     "Error al actualizar perfil",
	MsgPasswordOK:        "Contraseña actualizada correctamente",
	MsgPasswordFailed:    "Error al actualizar la contraseña",
	MsgForgotOK:          "Se ha enviado un correo con instrucciones",
	MsgForgotFailed:      "Error al procesar la solicitud",
	MsgFillRequired:      "Por favor completa todos los campos obligatorios",
	MsgLoginRequired:     "Debes iniciar sesión para continuar",
	MsgAccessDenied:      "No tienes permisos para acceder a esta página",
	MsgInvalidEmail:      "Por favor ingresa un email válido",
	MsgNameTooShort:      "El nombre debe tener al menos 2 caracteres",
	MsgPasswordTooShort:  "La contraseña debe tener al menos 6 caracteres",
	MsgPasswordMismatch:  "Las contraseñas no coinciden",
	MsgPasswordUnchanged: "La nueva contraseña debe ser diferente a la actual",
	MsgRoleInvalid:       "Selecciona comprador o vendedor",
	MsgSessionExpired:    "Tu sesión ha expirado",

	MsgShippingRequired: "Por favor ingresa una dirección de envío",
	MsgCardIncomplete:   "Por favor completa todos los campos de la tarjeta",
	MsgCardUnknown:      "Número de tarjeta no válido para pruebas",
	MsgPaymentApproved:  "¡Pago aprobado! Orden creada exitosamente",
	MsgOrderPending:     "Orden creada. Estado: %s",
	MsgOrderFailed:      "Error al procesar el pedido",
	MsgCartEmpty:        "Tu carrito está vacío",

	MsgOrderStatusOK:     "Estado del pedido actualizado",
	MsgOrderStatusFailed: "Error al actualizar estado del pedido",
	MsgOrderLoadFailed:   "Error al cargar el pedido",
	MsgOrdersLoadFailed:  "No se pudieron cargar los pedidos",
	MsgTransitionInvalid: "Este cambio de estado no está permitido",
	MsgSellerDataFailed:  "Error al cargar los datos del vendedor",

	MsgRatingRequired:  "Por favor selecciona una calificación",
	MsgCommentRequired: "Por favor escribe un comentario",
	MsgReviewOK:        "Reseña agregada exitosamente",
	MsgReviewFailed:    "Error al enviar reseña",

	MsgMessageFailed:       "Error al enviar mensaje",
	MsgMessagesLoadFailed:  "Error al cargar los mensajes",
	MsgConversationsFailed: "Error al cargar las conversaciones",

	MsgProductsLoadFailed:  "Error al cargar los productos",
	MsgProductDeleted:      "Producto eliminado correctamente",
	MsgProductDeleteFailed: "Error al eliminar el producto",
	MsgProductUpdated:      "Producto actualizado correctamente",
	MsgProductUpdateFailed: "Error al actualizar el producto",
	MsgProductCreated:      "Producto creado correctamente",
	MsgProductCreateFailed: "Error al crear el producto",
	MsgProductLoadFailed:   "Error al cargar la información del producto",
	MsgProductNotOwned:     "No tienes permiso para editar este producto",

	MsgCategoriesLoadFailed: "Error al cargar las categorías",
	MsgCategoryCreated:      "Categoría creada correctamente",
	MsgCategoryUpdated:      "Categoría actualizada correctamente",
	MsgCategoryDeleted:      "Categoría eliminada correctamente",
	MsgCategorySaveFailed:   "Error al guardar la categoría",
	MsgCategoryDeleteFailed: "Error al eliminar la categoría",
	MsgUserDeleted:          "Usuario eliminado correctamente",
	MsgUserUpdated:          "Usuario actualizado correctamente",
	MsgCategoryInUse:        "No se puede eliminar la categoría porque hay productos asociados",
	MsgUserDeleteFailed:     "Error al eliminar el usuario",
	MsgUserStatusOK:         "Estado del usuario actualizado a %s",
	MsgUserStatusFailed:     "Error al actualizar el estado del usuario",
	MsgProductStatusOK:      "Estado del producto actualizado a %s",
	MsgProductStatusFailed:  "Error al actualizar el estado del producto",
	MsgAdminOrderStatusOK:   "Estado del pedido #%s actualizado a %s",
	MsgStatsLoadFailed:      "Error al cargar las estadísticas del dashboard",
	MsgUsersLoadFailed:      "Error al cargar los usuarios",
	MsgActionCancelled:      "Acción cancelada",

	MsgConfirmDeleteProduct:  "¿Estás seguro de que quieres eliminar este producto?",
	MsgConfirmDeleteCategory: "¿Estás seguro de que deseas eliminar esta categoría?",
	MsgConfirmDeleteUser:     "¿Estás seguro de que deseas eliminar al usuario %s?",
	MsgConfirmCancelOrder:    "¿Estás seguro de que deseas cancelar el pedido #%s?",
}

var (
	supported = []language.Tag{language.Spanish, language.English}
	matcher   = language.NewMatcher(supported)
	messages  = buildCatalog()
)

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.Spanish))
	for key, es := range spanish {
		_ = b.SetString(language.Spanish, key, es)
		_ = b.SetString(language.English, key, key)
	}
	return b
}

// Translator renders message keys for one locale. Text that is not a known
// key, such as a server-supplied message, passes through untouched.
type Translator struct {
	printer *message.Printer
}

// NewTranslator picks the closest supported locale for tag ("es", "en-US",
// ...). Unknown or empty tags resolve to Spanish.
func NewTranslator(tag string) *Translator {
	t, _ := language.MatchStrings(matcher, tag)
	base, _ := t.Base()
	lang := language.Spanish
	if base.String() == "en" {
		lang = language.English
	}
	return &Translator{printer: message.NewPrinter(lang, message.Catalog(messages))}
}

// T translates key, formatting args into it. Unknown keys are returned as-is.
func (t *Translator) T(key string, args ...any) string {
	if _, ok := spanish[key]; !ok {
		return key
	}
	return t.printer.Sprintf(key, args...)
}
