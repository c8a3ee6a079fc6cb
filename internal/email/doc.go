// Package email arma y envía mensajes SMTP con go-mail.
//
// Dos usos:
//   - mails del sistema (verificación de cuenta) con el SMTP de la config global
//   - campañas, con el SMTP de cada website: el dispatcher abre una Session por
//     worker y reutiliza la conexión para todos sus destinatarios
package email
