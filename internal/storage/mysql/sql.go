package mysql

// -----------------------------------------------------------------------------
// HOTELS
// -----------------------------------------------------------------------------

const upsertHotelSQL = `
INSERT INTO hotels
  (id, owner_id, name, city, country, description, type, adult_count, children_count,
   facilities, price_per_night, star_rating, image_urls, last_updated)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  owner_id        = VALUES(owner_id),
  name            = VALUES(name),
  city            = VALUES(city),
  country         = VALUES(country),
  description     = VALUES(description),
  type            = VALUES(type),
  adult_count     = VALUES(adult_count),
  children_count  = VALUES(children_count),
  facilities      = VALUES(facilities),
  price_per_night = VALUES(price_per_night),
  star_rating     = VALUES(star_rating),
  image_urls      = VALUES(image_urls),
  last_updated    = VALUES(last_updated)
`

const getHotelSQL = `
SELECT id, owner_id, name, city, country, description, type, adult_count, children_count,
       facilities, price_per_night, star_rating, image_urls, last_updated
FROM hotels
WHERE id = ?
`

const hotelExistsSQL = `SELECT 1 FROM hotels WHERE id = ?`

// -----------------------------------------------------------------------------
// BOOKINGS
// -----------------------------------------------------------------------------

// Appends in one statement: the SELECT yields no row when the hotel is gone,
// and uq_bookings_payment_ref rejects a second booking for the same payment.
const appendBookingSQL = `
INSERT INTO bookings
  (id, hotel_id, user_id, payment_ref, first_name, last_name, email,
   adult_count, children_count, check_in, check_out, total_cost, created_at)
SELECT ?, h.id, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
FROM hotels h
WHERE h.id = ?
`

const bookingColumns = `id, hotel_id, user_id, payment_ref, first_name, last_name, email,
       adult_count, children_count, check_in, check_out, total_cost, created_at`

// Cancelled rows stay as tombstones so their payment_ref remains taken;
// every read below only sees live bookings.
const getBookingSQL = `SELECT ` + bookingColumns + ` FROM bookings WHERE id = ? AND cancelled_at IS NULL`

const getBookingByPaymentSQL = `SELECT ` + bookingColumns + ` FROM bookings WHERE payment_ref = ? AND cancelled_at IS NULL`

const listBookingsSQL = `SELECT ` + bookingColumns + ` FROM bookings WHERE hotel_id = ? AND cancelled_at IS NULL ORDER BY seq`

const listUserBookingsSQL = `SELECT ` + bookingColumns + ` FROM bookings WHERE user_id = ? AND cancelled_at IS NULL ORDER BY seq`

const cancelBookingSQL = `
UPDATE bookings SET cancelled_at = UTC_TIMESTAMP(6)
WHERE hotel_id = ? AND id = ? AND cancelled_at IS NULL
`

// -----------------------------------------------------------------------------
// USERS
// -----------------------------------------------------------------------------

const insertUserSQL = `
INSERT INTO users (id, email, password_hash, first_name, last_name, is_admin)
VALUES (?, ?, ?, ?, ?, ?)
`

const userColumns = `id, email, password_hash, first_name, last_name, is_admin,
       reset_password_token, reset_password_expires`

const getUserSQL = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

const getUserByEmailSQL = `SELECT ` + userColumns + ` FROM users WHERE email = ?`

const getUserByResetTokenSQL = `SELECT ` + userColumns + `
FROM users
WHERE reset_password_token = ? AND reset_password_expires > ?`

const updateUserSQL = `
UPDATE users
SET email = ?, password_hash = ?, first_name = ?, last_name = ?, is_admin = ?
WHERE id = ?
`

const setResetTokenSQL = `
UPDATE users SET reset_password_token = ?, reset_password_expires = ? WHERE id = ?
`

const resetPasswordSQL = `
UPDATE users
SET password_hash = ?, reset_password_token = NULL, reset_password_expires = NULL
WHERE id = ?
`

const userExistsSQL = `SELECT 1 FROM users WHERE id = ?`

// -----------------------------------------------------------------------------
// CONTACT MESSAGES
// -----------------------------------------------------------------------------

const insertMessageSQL = `
INSERT INTO contact_messages
  (id, name, email, subject, message, booking_id, is_read, is_cancellation_request,
   status, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const messageColumns = `id, name, email, subject, message, booking_id, is_read,
       is_cancellation_request, status, created_at, updated_at`

const getMessageSQL = `SELECT ` + messageColumns + ` FROM contact_messages WHERE id = ?`

const listMessagesSQL = `SELECT ` + messageColumns + ` FROM contact_messages ORDER BY created_at DESC, id DESC`

const markReadSQL = `UPDATE contact_messages SET is_read = TRUE, updated_at = ? WHERE id = ?`

// Only moves the row when it is still in the expected status.
const transitionStatusSQL = `
UPDATE contact_messages SET status = ?, updated_at = ? WHERE id = ? AND status = ?
`

const messageExistsSQL = `SELECT 1 FROM contact_messages WHERE id = ?`
